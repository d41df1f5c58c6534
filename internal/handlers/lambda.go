package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/grocky/whatip-service/internal/clientip"
	"github.com/grocky/whatip-service/internal/response"
)

// GetIPInfoFromEvent is the API Gateway flavor of GetIPInfo. The peer
// address is RequestContext.Identity.SourceIP, which is set by API Gateway
// and cannot be spoofed.
func GetIPInfoFromEvent(request events.APIGatewayProxyRequest, logger *slog.Logger) (response.IPInfoResponse, *response.RequestError) {
	logger.Debug("handler started", "handler", "GetIPInfoFromEvent")
	defer logger.Debug("handler completed", "handler", "GetIPInfoFromEvent")

	// API Gateway may normalize header names to lowercase.
	header := func(name string) string {
		if v, ok := request.Headers[name]; ok {
			return v
		}
		return request.Headers[strings.ToLower(name)]
	}

	info := clientip.FromHeaders(header, request.RequestContext.Identity.SourceIP)

	if info.PublicIP == "" {
		logger.Warn("client IP not found", "handler", "GetIPInfoFromEvent")
		return response.IPInfoResponse{}, &response.RequestError{
			Status:      http.StatusBadRequest,
			Description: "Client IP not found",
		}
	}

	logger.Info("resolved public IP",
		"handler", "GetIPInfoFromEvent",
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
