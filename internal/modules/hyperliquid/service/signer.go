package service

import (
	"crypto/ecdsa"
	"encoding/binary"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"
)

// Signature — r/s/v в том виде, в котором их ждёт /exchange.
type Signature struct {
	R string `json:"r"`
	S string `json:"s"`
	V uint8  `json:"v"`
}

type Signer struct {
	key *ecdsa.PrivateKey
}

func NewSigner(secretHex string) (*Signer, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(secretHex, "0x"))
	if err != nil {
		return nil, errors.Wrap(err, "parse secret key")
	}
	return &Signer{key: key}, nil
}

func (s *Signer) Address() string {
	return strings.ToLower(crypto.PubkeyToAddress(s.key.PublicKey).Hex())
}

// SignL1Action подписывает действие по схеме phantom-agent:
// connectionId = keccak(msgpack(action) + nonce(8 байт BE) + 0x00),
// дальше обычный EIP-712 по структуре Agent в домене "Exchange".
// Нулевой байт в хвосте — признак отсутствия vaultAddress.
func (s *Signer) SignL1Action(action any, nonce uint64, isMainnet bool) (Signature, error) {
	packed, err := msgpack.Marshal(action)
	if err != nil {
		return Signature{}, errors.Wrap(err, "msgpack action")
	}

	data := make([]byte, 0, len(packed)+9)
	data = append(data, packed...)
	var nb [8]byte
	binary.BigEndian.PutUint64(nb[:], nonce)
	data = append(data, nb[:]...)
	data = append(data, 0x00)

	connectionID := crypto.Keccak256(data)

	source := "a"
	if !isMainnet {
		source = "b"
	}

	typed := apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": {
				{Name: "name", Type: "string"},
				{Name: "version", Type: "string"},
				{Name: "chainId", Type: "uint256"},
				{Name: "verifyingContract", Type: "address"},
			},
			"Agent": {
				{Name: "source", Type: "string"},
				{Name: "connectionId", Type: "bytes32"},
			},
		},
		PrimaryType: "Agent",
		Domain: apitypes.TypedDataDomain{
			Name:              "Exchange",
			Version:           "1",
			ChainId:           math.NewHexOrDecimal256(1337),
			VerifyingContract: "0x0000000000000000000000000000000000000000",
		},
		Message: apitypes.TypedDataMessage{
			"source":       source,
			"connectionId": hexutil.Encode(connectionID),
		},
	}

	domainSep, err := typed.HashStruct("EIP712Domain", typed.Domain.Map())
	if err != nil {
		return Signature{}, errors.Wrap(err, "hash domain")
	}
	msgHash, err := typed.HashStruct(typed.PrimaryType, typed.Message)
	if err != nil {
		return Signature{}, errors.Wrap(err, "hash message")
	}

	digest := crypto.Keccak256(append(append([]byte{0x19, 0x01}, domainSep...), msgHash...))
	sig, err := crypto.Sign(digest, s.key)
	if err != nil {
		return Signature{}, errors.Wrap(err, "sign digest")
	}

	return Signature{
		R: hexutil.Encode(sig[:32]),
		S: hexutil.Encode(sig[32:64]),
		V: sig[64] + 27,
	}, nil
}
