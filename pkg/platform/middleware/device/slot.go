// Package device resolves which device a request comes from. Each device owns
// one session slot.
package device

import (
	"net/http"
	"strings"

	"abhaya/pkg/requestcontext"
)

// HeaderDeviceID names the device slot at login.
const HeaderDeviceID = "X-Device-ID"

// Slot stores the X-Device-ID header in the context. A missing header leaves
// requestcontext.DefaultSlot in effect. Validation happens in the service.
func Slot(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if slot := strings.TrimSpace(r.Header.Get(HeaderDeviceID)); slot != "" {
			r = r.WithContext(requestcontext.WithSlot(r.Context(), slot))
		}
		next.ServeHTTP(w, r)
	})
}
