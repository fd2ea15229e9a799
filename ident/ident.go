// Package ident derives the deterministic string keys used to store and
// cross-reference deliberation entities. Keys are persisted as foreign
// references, so the formats here must never change.
package ident

import (
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// DeliberationConfigID is the fixed key of the singleton config entity.
const DeliberationConfigID = "DeliberationConfigID"

func Proposal(pid uint64) string {
	return strconv.FormatUint(pid, 10)
}

func Header(pid, headerID uint64) string {
	return "header-" + strconv.FormatUint(pid, 10) + "-" + strconv.FormatUint(headerID, 10)
}

func Headers(pid uint64, headerIDs []uint64) []string {
	keys := make([]string, len(headerIDs))
	for i, id := range headerIDs {
		keys[i] = Header(pid, id)
	}
	return keys
}

func Command(pid, commandID uint64) string {
	return "command-" + strconv.FormatUint(pid, 10) + "-" + strconv.FormatUint(commandID, 10)
}

func Commands(pid uint64, commandIDs []uint64) []string {
	keys := make([]string, len(commandIDs))
	for i, id := range commandIDs {
		keys[i] = Command(pid, id)
	}
	return keys
}

func Action(pid, commandID uint64, actionIdx int) string {
	return strconv.FormatUint(pid, 10) + "-" + strconv.FormatUint(commandID, 10) + "-" + strconv.Itoa(actionIdx)
}

func Vote(pid uint64, rep common.Address) string {
	return strconv.FormatUint(pid, 10) + "-" + Rep(rep)
}

// Rep normalizes a representative address to its lowercase hex form.
func Rep(rep common.Address) string {
	return strings.ToLower(rep.Hex())
}

func TopHeader(pid, epoch uint64, rank int) string {
	return "top-header-" + strconv.FormatUint(pid, 10) + "-" + strconv.FormatUint(epoch, 10) + "-" + strconv.Itoa(rank)
}

func TopCommand(pid, epoch uint64, rank int) string {
	return "top-command-" + strconv.FormatUint(pid, 10) + "-" + strconv.FormatUint(epoch, 10) + "-" + strconv.Itoa(rank)
}

func Text(textID uint64) string {
	return strconv.FormatUint(textID, 10)
}

func Member(memberID uint64) string {
	return strconv.FormatUint(memberID, 10)
}
