package worker

import (
	"github.com/spec-kit/event-service/internal/service"
)

// StartStreamWorker registers the handlers that push event changes to stream clients.
func StartStreamWorker(streamService *service.StreamService) {
	if streamService == nil {
		return
	}
	streamService.RegisterHandlers()
}
