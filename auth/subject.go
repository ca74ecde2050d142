package auth

import "context"

type (
	// Subject identifies who a session token was issued to
	Subject struct {
		ID    string `json:"_id"`
		Email string `json:"email"`
	}

	subjectKey struct{}
)

func WithSubject(ctx context.Context, s Subject) context.Context {
	return context.WithValue(ctx, subjectKey{}, s)
}

// SubjectFrom returns the authenticated subject attached to ctx
func SubjectFrom(ctx context.Context) (Subject, bool) {
	s, ok := ctx.Value(subjectKey{}).(Subject)
	return s, ok
}
