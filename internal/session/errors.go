package session

import "errors"

var (
	// ErrAssemblyFailed wraps every failure while building a session.
	ErrAssemblyFailed = errors.New("session assembly failed")

	// ErrNoQuestions is wrapped by ErrAssemblyFailed for an empty question set.
	ErrNoQuestions = errors.New("no questions to assemble")

	// ErrNoActiveSession is returned by operations that need a session when
	// none exists. Absence itself is a normal state; see Manager.Load.
	ErrNoActiveSession = errors.New("no active session")
)
