package bamext

// MultiError collects errors from fan-in paths (e.g. closing many sources).
type MultiError []error

// MaybeError returns nil if no errors have been collected; otherwise itself.
func (me MultiError) MaybeError() error {
	if len(me) == 0 {
		return nil
	}
	return me
}

func (me MultiError) Error() string {
	res := ""
	for _, err := range me {
		res = res + err.Error() + ";"
	}
	return res
}
