package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Wrapping helpers re-exported from cockroachdb/errors so packages can
// import a single errors package.
var (
	New         = crdb.New
	Newf        = crdb.Newf
	Errorf      = crdb.Errorf
	Wrap        = crdb.Wrap
	Wrapf       = crdb.Wrapf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
	Is          = crdb.Is
	As          = crdb.As
	Join        = crdb.Join
)
