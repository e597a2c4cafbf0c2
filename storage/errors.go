package storage

import "errors"

var ErrNotInitialized = errors.New("marathon state not found in storage")
