package script

import (
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"meshnode/internal/crypto"
	"meshnode/internal/node"
)

func newSigner(t *testing.T) *node.Node {
	t.Helper()
	pub, priv, err := crypto.GenKeypair()
	if err != nil {
		t.Fatalf("gen keypair: %v", err)
	}
	return node.FromKeypair(pub, priv)
}

func TestParse(t *testing.T) {
	ins, err := Parse("deadbeef SIGN")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if ins.Arg != "deadbeef" || ins.Op != OpSign {
		t.Fatalf("unexpected instruction: %+v", ins)
	}
	if _, err := Parse("SIGN"); err == nil {
		t.Fatalf("expected error for one token")
	}
	if _, err := Parse("a b c"); err == nil {
		t.Fatalf("expected error for three tokens")
	}
}

func TestRunSign(t *testing.T) {
	signer := newSigner(t)
	out, err := Run(Instruction{Arg: "deadbeef", Op: OpSign}, signer)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	tokens := strings.Fields(out)
	if len(tokens) != 2 || tokens[1] != OpCheckSig {
		t.Fatalf("unexpected output program: %q", out)
	}
	sig, err := hex.DecodeString(tokens[0])
	if err != nil {
		t.Fatalf("signature not hex: %v", err)
	}
	if !crypto.Verify(signer.PubKey, []byte("deadbeef"), sig) {
		t.Fatalf("signature did not verify")
	}
}

func TestRunUnknownOpcode(t *testing.T) {
	signer := newSigner(t)
	if _, err := Run(Instruction{Arg: "x", Op: "HALT"}, signer); !errors.Is(err, ErrUnknownOpcode) {
		t.Fatalf("expected ErrUnknownOpcode, got %v", err)
	}
}
