package network

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestEncodeDecode(t *testing.T) {
	payload := []byte(`{"lobbyId":"abc"}`)
	packet, err := Encode(MsgTypeGetLobby, payload)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if len(packet) != 4+len(payload) {
		t.Fatalf("Expected %d bytes, got %d", 4+len(payload), len(packet))
	}

	decoded, err := Decode(packet)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if decoded.MsgID != MsgTypeGetLobby || int(decoded.Length) != len(payload) {
		t.Errorf("Expected id %d len %d, got %d %d", MsgTypeGetLobby, len(payload), decoded.MsgID, decoded.Length)
	}
	if !bytes.Equal(decoded.Data, payload) {
		t.Errorf("Expected payload %q, got %q", payload, decoded.Data)
	}
}

func TestDecode_Short(t *testing.T) {
	if _, err := Decode([]byte{0, 1}); !errors.Is(err, io.ErrShortBuffer) {
		t.Errorf("Expected io.ErrShortBuffer for a truncated header, got %v", err)
	}
	// header claims 10 bytes, only 2 follow
	if _, err := Decode([]byte{0, 1, 0, 10, 'a', 'b'}); !errors.Is(err, io.ErrShortBuffer) {
		t.Errorf("Expected io.ErrShortBuffer for a truncated body, got %v", err)
	}
}

func TestEncode_TooLarge(t *testing.T) {
	if _, err := Encode(MsgTypeLobbyState, make([]byte, MaxPayload+1)); !errors.Is(err, ErrPayloadTooLarge) {
		t.Errorf("Expected ErrPayloadTooLarge, got %v", err)
	}
	if _, err := Encode(MsgTypeLobbyState, make([]byte, MaxPayload)); err != nil {
		t.Errorf("the largest payload should encode, got %v", err)
	}
}
