package handlers

import (
	"log/slog"
	"net/http"

	"github.com/grocky/whatip-service/internal/clientip"
	"github.com/grocky/whatip-service/internal/response"
)

// GetIPInfo resolves and returns the client's addressing info for a request.
// The public IP is taken from the first trusted proxy header that parses as
// an address, falling back to the peer address of the connection.
func GetIPInfo(r *http.Request, logger *slog.Logger) (response.IPInfoResponse, *response.RequestError) {
	logger.Debug("handler started", "handler", "GetIPInfo")
	defer logger.Debug("handler completed", "handler", "GetIPInfo")

	info := clientip.FromRequest(r)

	if info.PublicIP == "" {
		logger.Warn("client IP not found", "handler", "GetIPInfo")
		return response.IPInfoResponse{}, &response.RequestError{
			Status:      http.StatusBadRequest,
			Description: "Client IP not found",
		}
	}

	logger.Info("resolved public IP",
		"handler", "GetIPInfo",
		"publicIP", info.PublicIP,
		"peerIP", info.PeerIP,
	)

	return response.IPInfoResponse{
		Status: http.StatusOK,
		Body: response.IPInfoBody{
			PublicIP:  info.PublicIP,
			PeerIP:    info.PeerIP,
			Forwarded: info.Forwarded,
			UserAgent: info.UserAgent,
		},
	}, nil
}
