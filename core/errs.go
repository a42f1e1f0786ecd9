package core

import "errors"

var (
	ErrEmptySeries    = errors.New("empty yield series")
	ErrEmptyRange     = errors.New("no data available for specified date range")
	ErrDuplicateDate  = errors.New("duplicate date in yield series")
	ErrNonFiniteYield = errors.New("non-finite yield value")
	ErrUnknownAsset   = errors.New("asset not present in series")
	ErrNoResult       = errors.New("no search strategy produced a finite result")
)
