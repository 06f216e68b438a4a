package cli

import "errors"

var errMissingValue = errors.New("missing value (or pass --clear to remove the field)")
