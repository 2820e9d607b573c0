package extmap

import "errors"

var (
	ErrMappingExists = errors.New("mapping already exists for this case and system")
	ErrMissingFields = errors.New("external_case_id and external_system are required")
)
