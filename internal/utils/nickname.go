package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

var nicknameAdjectives = []string{
	"brisk", "calm", "clever", "daring", "eager", "frank", "gentle", "keen",
	"lively", "lucky", "mellow", "nimble", "proud", "quiet", "sharp", "steady",
	"sunny", "swift", "tidy", "witty",
}

var nicknameNouns = []string{
	"badger", "falcon", "heron", "lynx", "marten", "otter", "owl", "panda",
	"pelican", "raven", "salmon", "seal", "sparrow", "stork", "tiger", "trout",
	"walrus", "whale", "wren", "yak",
}

// GenerateNickname returns a readable random nickname like "swift-otter-4821"
// for accounts created from an OAuth identity.
func GenerateNickname() string {
	adj := nicknameAdjectives[randomIndex(len(nicknameAdjectives))]
	noun := nicknameNouns[randomIndex(len(nicknameNouns))]
	return fmt.Sprintf("%s-%s-%04d", adj, noun, randomIndex(10000))
}

func randomIndex(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		// crypto/rand only fails when the platform source is broken
		return 0
	}
	return int(v.Int64())
}
