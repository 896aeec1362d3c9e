package random

import (
	"crypto/rand"
	"math/big"
)

// Intn 返回 [0, n) 内均匀分布的安全随机数，n <= 0 时返回 0
func Intn(n int) int {
	if n <= 0 {
		return 0
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0 // fallback
	}
	return int(v.Int64())
}

// Pick 从候选中均匀随机挑选一个，候选为空时 ok 为 false
func Pick(candidates []string) (picked string, ok bool) {
	if len(candidates) == 0 {
		return "", false
	}
	return candidates[Intn(len(candidates))], true
}
