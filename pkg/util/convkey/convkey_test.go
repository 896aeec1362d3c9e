package convkey

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveIsOrderIndependent(t *testing.T) {
	pairs := [][2]string{
		{"U1001", "U1002"},
		{"b", "a"},
		{"U9", "U10"},
		{"same", "samf"},
	}
	for _, p := range pairs {
		assert.Equal(t, Resolve(p[0], p[1]), Resolve(p[1], p[0]), "pair %v", p)
	}
}

func TestResolveSortsLexicographically(t *testing.T) {
	assert.Equal(t, "U10_U9", Resolve("U9", "U10"))
	assert.Equal(t, "alice_bob", Resolve("bob", "alice"))
}

func TestOrder(t *testing.T) {
	one, two := Order("zed", "amy")
	assert.Equal(t, "amy", one)
	assert.Equal(t, "zed", two)
}

func TestResolveDistinguishesSeparatorInIds(t *testing.T) {
	assert.NotEqual(t, Resolve("a_b", "c"), Resolve("a", "b_c"))
	assert.NotEqual(t, Resolve("a%5F", "b"), Resolve("a_", "b"))
	assert.Equal(t, "a%5Fb_c", Resolve("c", "a_b"))
	assert.Equal(t, "a_b%5Fc", Resolve("b_c", "a"))
	// 转义后的键只含一个分隔符
	assert.Equal(t, 1, strings.Count(Resolve("x_y_z", "p_q"), Separator))
}

func TestMaxLengthCoversWorstCase(t *testing.T) {
	id := strings.Repeat("%", 64)
	other := strings.Repeat("_", 64)
	assert.Equal(t, MaxLength, len(Resolve(id, other)))
}
