// Package rtc implements the media engine seam on top of pion/webrtc.
package rtc

import (
	"github.com/pion/webrtc/v4"

	"github.com/Vivek-4321/Socket-Server/internal/config"
	"github.com/Vivek-4321/Socket-Server/internal/core"
)

// Engine creates pion peer connections configured with the relay endpoints
// from config. It is safe for concurrent use.
type Engine struct {
	cfg webrtc.Configuration
}

func NewEngine(servers []config.ICEServer) *Engine {
	cfg := webrtc.Configuration{}
	for _, s := range servers {
		ice := webrtc.ICEServer{URLs: s.URLs}
		if s.Username != "" {
			ice.Username = s.Username
			ice.Credential = s.Credential
		}
		cfg.ICEServers = append(cfg.ICEServers, ice)
	}
	return &Engine{cfg: cfg}
}

func (e *Engine) NewSession() (core.MediaSession, error) {
	pc, err := webrtc.NewPeerConnection(e.cfg)
	if err != nil {
		return nil, err
	}
	return newSession(pc), nil
}
