package teams

import "errors"

// Sentinel kinds for team formation errors.
var (
	// ErrNoStudents means the ranked input was empty: nobody qualified for
	// the requested topic(s) and grade. Distinct from a successful, empty
	// result on purpose.
	ErrNoStudents = errors.New("no students to form teams from")
)
