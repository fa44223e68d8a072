// Package clock は「今日」と「現在時刻」の取得元を抽象化します。
// 出勤判定や月次集計はすべてこのインターフェース経由で時刻を取得するため、
// テストでは固定時刻を注入できます。
package clock

import "time"

// Clock は現在時刻を返します。
type Clock interface {
	Now() time.Time
}

// System は指定されたタイムゾーンで実時刻を返すClockです。
type System struct {
	loc *time.Location
}

// NewSystem はlocで現在時刻を返すSystemを生成します。locがnilの場合はUTCを使用します。
func NewSystem(loc *time.Location) System {
	if loc == nil {
		loc = time.UTC
	}
	return System{loc: loc}
}

// Now は設定されたタイムゾーンでの現在時刻を返します。
func (s System) Now() time.Time {
	return time.Now().In(s.loc)
}

// Func は関数をClockとして扱うアダプタです。
type Func func() time.Time

// Now はf()を返します。
func (f Func) Now() time.Time { return f() }

// Fixed は常にtを返すClockを返します。
func Fixed(t time.Time) Func {
	return func() time.Time { return t }
}
