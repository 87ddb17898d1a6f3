package middleware

import (
	"errors"
	"log"
	"net/http"
	"runtime/debug"

	"github.com/xavierca1/sitm-outreach/internal/ledger"
)

// Halt stops the service after the campaign ledger is found corrupt.
type Halt func(err error)

// FatalHalt logs and exits the process.
func FatalHalt(err error) {
	log.Fatalf("💀 %v: encerrando para não mascarar o ledger corrompido", err)
}

// Recover turns handler panics into a 500, except a corrupt ledger, which is
// handed to halt. net/http would otherwise swallow the panic and keep serving.
func Recover(halt Halt) func(http.Handler) http.Handler {
	if halt == nil {
		halt = FatalHalt
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				v := recover()
				if v == nil {
					return
				}
				if v == http.ErrAbortHandler {
					panic(v)
				}
				if err, ok := v.(error); ok {
					var corrupt *ledger.CorruptionError
					if errors.As(err, &corrupt) {
						w.WriteHeader(http.StatusInternalServerError)
						halt(corrupt)
						return
					}
				}
				log.Printf("❌ panic em %s %s: %v\n%s", r.Method, r.URL.Path, v, debug.Stack())
				w.WriteHeader(http.StatusInternalServerError)
			}()
			next.ServeHTTP(w, r)
		})
	}
}
