package websocket

import (
	"log"
	"net/http"

	ws "github.com/coder/websocket"
)

// HouseholdResolver reports which household the request's user belongs to.
// Requests are already authenticated when they reach the upgrade handler.
type HouseholdResolver func(r *http.Request) (int64, error)

// HandleWebSocket returns an HTTP handler that upgrades connections to
// WebSocket and runs them as hub clients scoped to the user's household.
// Users without a household cannot subscribe.
func HandleWebSocket(hub *Hub, household HouseholdResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		householdID, err := household(r)
		if err != nil {
			http.Error(w, "join a household to receive updates", http.StatusForbidden)
			return
		}

		conn, err := ws.Accept(w, r, &ws.AcceptOptions{
			InsecureSkipVerify: true, // cookie auth already gates the upgrade
		})
		if err != nil {
			log.Printf("websocket: accept: %v", err)
			return
		}

		client := NewClient(hub, conn, householdID)
		client.Run(r.Context())
	}
}
