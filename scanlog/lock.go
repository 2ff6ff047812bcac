package scanlog

import "errors"

// LockFileName guards a working directory against a second running instance.
const LockFileName = ".wk-scan.lock"

var ErrLocked = errors.New("working directory is used by another instance")
