package router

import "github.com/nexuslabs/nexus/internal/protocol"

func handlePing() protocol.PingResult {
	return protocol.PingResult{}
}
