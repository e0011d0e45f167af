package network

import "encoding/json"

// Message é o envelope padrão de toda a comunicação pelo canal persistente.
// Type roteia o comando/evento; Payload fica em JSON bruto para ser
// decodificado e validado na borda, antes de chegar na máquina de estados.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Limite de leitura por mensagem. Um cliente que anuncia algo maior está se
// comportando mal e tem a conexão derrubada.
const MaxMessageSize = 64 * 1024

// NewMessage monta um envelope serializando o payload. Erros de marshal aqui
// são bugs de programação (payloads são structs nossas), então o envelope sai
// com payload vazio em vez de propagar erro para cada chamador.
func NewMessage(msgType string, payload any) Message {
	if payload == nil {
		return Message{Type: msgType}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return Message{Type: msgType}
	}
	return Message{Type: msgType, Payload: raw}
}
