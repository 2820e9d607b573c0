package cases

import "errors"

var ErrEmptyTitle = errors.New("title is required")
