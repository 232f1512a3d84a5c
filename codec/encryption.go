package codec

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"

	commonpb "go.temporal.io/api/common/v1"
	"go.temporal.io/sdk/converter"
	"google.golang.org/protobuf/proto"
)

const (
	// MetadataEncodingEncrypted marks payloads produced by this codec
	MetadataEncodingEncrypted = "binary/encrypted"
	// MetadataEncryptionCipher names the cipher in payload metadata
	MetadataEncryptionCipher = "encryption-cipher"

	cipherAES256GCM = "AES256-GCM"
)

// EncryptionCodec seals every payload with AES-256-GCM
type EncryptionCodec struct {
	aead cipher.AEAD
}

// NewEncryptionCodec builds a codec from a 32-byte key
func NewEncryptionCodec(key []byte) (*EncryptionCodec, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("encryption key must be 32 bytes, got %d", len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return &EncryptionCodec{aead: aead}, nil
}

// NewEncryptionDataConverter wraps the default data converter with an EncryptionCodec
func NewEncryptionDataConverter(key []byte) (converter.DataConverter, error) {
	c, err := NewEncryptionCodec(key)
	if err != nil {
		return nil, err
	}
	return converter.NewCodecDataConverter(converter.GetDefaultDataConverter(), c), nil
}

// Encode implements converter.PayloadCodec
func (e *EncryptionCodec) Encode(payloads []*commonpb.Payload) ([]*commonpb.Payload, error) {
	result := make([]*commonpb.Payload, len(payloads))
	for i, p := range payloads {
		plain, err := proto.Marshal(p)
		if err != nil {
			return payloads, fmt.Errorf("failed to marshal payload: %w", err)
		}

		nonce := make([]byte, e.aead.NonceSize())
		if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
			return payloads, fmt.Errorf("failed to generate nonce: %w", err)
		}

		result[i] = &commonpb.Payload{
			Metadata: map[string][]byte{
				converter.MetadataEncoding: []byte(MetadataEncodingEncrypted),
				MetadataEncryptionCipher:   []byte(cipherAES256GCM),
			},
			Data: e.aead.Seal(nonce, nonce, plain, nil),
		}
	}
	return result, nil
}

// Decode implements converter.PayloadCodec. Payloads that were not
// encrypted by this codec pass through untouched.
func (e *EncryptionCodec) Decode(payloads []*commonpb.Payload) ([]*commonpb.Payload, error) {
	result := make([]*commonpb.Payload, len(payloads))
	for i, p := range payloads {
		if string(p.GetMetadata()[converter.MetadataEncoding]) != MetadataEncodingEncrypted {
			result[i] = p
			continue
		}

		data := p.GetData()
		ns := e.aead.NonceSize()
		if len(data) < ns {
			return payloads, fmt.Errorf("encrypted payload too short")
		}
		plain, err := e.aead.Open(nil, data[:ns], data[ns:], nil)
		if err != nil {
			return payloads, fmt.Errorf("failed to decrypt payload: %w", err)
		}

		decoded := &commonpb.Payload{}
		if err := proto.Unmarshal(plain, decoded); err != nil {
			return payloads, fmt.Errorf("failed to unmarshal payload: %w", err)
		}
		result[i] = decoded
	}
	return result, nil
}
