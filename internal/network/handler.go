package network

// EventHandler é a interface que liga a camada de rede à lógica do jogo.
// O gateway implementa isso; os três métodos são sempre invocados pela
// goroutine do Hub, um de cada vez.
type EventHandler interface {
	// OnConnect é chamado quando um novo cliente completa o upgrade.
	OnConnect(c *Client)

	// OnDisconnect é chamado quando um cliente sai (ou é derrubado).
	OnDisconnect(c *Client)

	// OnMessage é chamado para cada mensagem recebida de um cliente.
	OnMessage(c *Client, msg Message)
}
