package signal

import "github.com/Vivek-4321/Socket-Server/internal/app"

func (cl *client) handlePing() {
	cl.sendJSON(app.EventPong, struct{}{})
}
