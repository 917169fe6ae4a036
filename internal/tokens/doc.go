// Package tokens persists archive passwords in SQLite and orders them for the
// extraction executor.
//
// Each token tracks how often it has opened an archive and when it was last
// used. Candidates puts recently used tokens first, newest use first, and the
// rest by usage count. Plain and jtmdy text files can be imported and
// exported; importing an existing token adds its counts instead of
// duplicating it.
//
// The planner never reads this store. Job.Token is filled by whoever executes
// the plan.
package tokens
