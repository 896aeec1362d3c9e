// Package convkey 由两个参与者 ID 推导单聊会话的唯一键
package convkey

import "strings"

// Separator 会话键中两个用户 ID 之间的分隔符
const Separator = "_"

// MaxLength 两个 64 字符的 ID 全部转义后的最大键长
const MaxLength = 64*3*2 + len(Separator)

// escaper 转义 ID 中的分隔符和转义符本身，转义后的 ID 不含分隔符
// 不含这两个字符的 ID 保持原样，如 Resolve("bob", "alice") == "alice_bob"
var escaper = strings.NewReplacer("%", "%25", Separator, "%5F")

// Resolve 返回两个用户的会话键，与参数顺序无关：Resolve(a, b) == Resolve(b, a)
// 较小的 ID 在前，调用方保证 a、b 非空
// 不同的无序对得到不同的键，如 Resolve("a_b", "c") != Resolve("a", "b_c")
func Resolve(a, b string) string {
	a, b = Order(a, b)
	return escaper.Replace(a) + Separator + escaper.Replace(b)
}

// Order 返回按字典序排列后的参与者对
func Order(a, b string) (string, string) {
	if a > b {
		return b, a
	}
	return a, b
}
