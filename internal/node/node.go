package node

import (
	"encoding/hex"
	"os"

	"meshnode/internal/crypto"
)

// Node holds the local identity. ID never changes after construction.
type Node struct {
	ID      [32]byte
	PubKey  []byte
	privKey []byte
}

// NewNode loads the keypair stored under home, generating and persisting one
// on first run.
func NewNode(home string) (*Node, error) {
	if err := os.MkdirAll(home, 0700); err != nil {
		return nil, err
	}
	pub, priv, err := crypto.LoadKeypair(home)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		pub, priv, err = crypto.GenKeypair()
		if err != nil {
			return nil, err
		}
		if err := crypto.SaveKeypair(home, pub, priv); err != nil {
			return nil, err
		}
	}
	return FromKeypair(pub, priv), nil
}

func FromKeypair(pub, priv []byte) *Node {
	return &Node{
		ID:      DeriveNodeID(pub),
		PubKey:  pub,
		privKey: priv,
	}
}

func (n *Node) Sign(msg []byte) ([]byte, error) {
	return crypto.Sign(n.privKey, msg)
}

func (n *Node) IDHex() string {
	return hex.EncodeToString(n.ID[:])
}

// DeriveNodeID hashes the hex encoding of the compressed public key.
func DeriveNodeID(pub []byte) [32]byte {
	sum := crypto.SHA3_256([]byte(hex.EncodeToString(pub)))
	var id [32]byte
	copy(id[:], sum)
	return id
}
