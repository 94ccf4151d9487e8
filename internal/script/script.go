// Package script interprets the two-token stack programs carried by
// instruction messages: an operand followed by an opcode.
package script

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

const (
	OpSign     = "SIGN"
	OpCheckSig = "CHECKSIG"
)

var ErrUnknownOpcode = errors.New("unknown opcode")

// Signer signs raw bytes with the local key.
type Signer interface {
	Sign(msg []byte) ([]byte, error)
}

type Instruction struct {
	Arg string
	Op  string
}

func Parse(program string) (Instruction, error) {
	tokens := strings.Fields(program)
	if len(tokens) != 2 {
		return Instruction{}, fmt.Errorf("want 2 tokens, got %d", len(tokens))
	}
	return Instruction{Arg: tokens[0], Op: tokens[1]}, nil
}

// Run executes one instruction. SIGN signs the operand and yields a program
// ready for a CHECKSIG verifier on the other side.
func Run(ins Instruction, signer Signer) (string, error) {
	switch ins.Op {
	case OpSign:
		sig, err := signer.Sign([]byte(ins.Arg))
		if err != nil {
			return "", err
		}
		return hex.EncodeToString(sig) + " " + OpCheckSig, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownOpcode, ins.Op)
	}
}
