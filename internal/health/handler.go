// Package health exposes the liveness probe.
package health

import "net/http"

// Handler reports that the process is up. It does not touch the database or
// Redis so a degraded dependency does not restart the pod.
func Handler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
