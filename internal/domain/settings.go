package domain

import "time"

// Settings regroupe les constantes réglables du sous-système. Le délai
// de debounce (2000 ms) et la fenêtre de dépôt (3 jours) viennent du
// produit d'origine : on les garde paramétrables sans leur inventer de
// sémantique supplémentaire.
type Settings struct {
	// Période du tick de recalcul, en millisecondes.
	TickMillis int64 `json:"tickMillis"`

	// Délai de debounce trailing-edge par channel, en millisecondes.
	// 0 = livraison synchrone (tests, CLI).
	DebounceMillis int64 `json:"debounceMillis"`

	// Largeur de la fenêtre de dépôt dérivée, en millisecondes.
	DepositWindowMillis int64 `json:"depositWindowMillis"`

	// Nombre maximal de flux SSE simultanés.
	MaxEventStreams int `json:"maxEventStreams"`
}

func DefaultSettings() Settings {
	return Settings{
		TickMillis:          1000,
		DebounceMillis:      2000,
		DepositWindowMillis: DefaultDepositWindow.Milliseconds(),
		MaxEventStreams:     8,
	}
}

func (s Settings) TickInterval() time.Duration {
	return time.Duration(s.TickMillis) * time.Millisecond
}

func (s Settings) DebounceDelay() time.Duration {
	return time.Duration(s.DebounceMillis) * time.Millisecond
}

func (s Settings) DepositWindow() time.Duration {
	return time.Duration(s.DepositWindowMillis) * time.Millisecond
}
