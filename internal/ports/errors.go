package ports

import "errors"

var ErrNotFound = errors.New("not found")

// ErrScopeClosed signale une lecture hors d'un scope de publication
// actif. C'est une violation de contrat côté appelant, pas une
// condition transitoire : on ne retente pas.
var ErrScopeClosed = errors.New("countdown scope closed")
