package handlers

import (
	"context"
	"net/http"
)

// Outcome is the result of one Step: either continue with a (possibly
// updated) context or halt with a terminal response.
type Outcome struct {
	ctx    context.Context
	halted bool
	status int
	body   any
}

// Continue lets the request proceed with ctx.
func Continue(ctx context.Context) Outcome {
	return Outcome{ctx: ctx}
}

// Halt stops the pipeline and responds with status and body.
func Halt(status int, body any) Outcome {
	return Outcome{halted: true, status: status, body: body}
}

func haltWith(err APIError) Outcome {
	return Halt(err.Status, err)
}

// Halted reports whether the outcome ends the request.
func (o Outcome) Halted() bool {
	return o.halted
}

// Step is one guard in front of a handler.
type Step func(r *http.Request) Outcome

// Pipeline runs steps in order ahead of the wrapped handler. The first
// step that halts writes the response; later steps and the handler do
// not run.
func Pipeline(steps ...Step) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, step := range steps {
				outcome := step(r)
				if outcome.halted {
					writeJSON(w, outcome.status, outcome.body)
					return
				}
				if outcome.ctx != nil {
					r = r.WithContext(outcome.ctx)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
