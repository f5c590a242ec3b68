package orders

// Kind 訂單核心操作的錯誤分類，由handlers對應至HTTP狀態碼
type Kind int

const (
	// 訂單或項目不存在，或呼叫者不是擁有者(對外不區分，避免洩漏資料存在與否)
	KindNotFound Kind = iota
	// 狀態前置條件不符:已取消、尚未送達、購物車是空的等
	KindInvalidState
	// 輸入值不合法，例如出貨狀態不在五種合法值內
	KindInvalidInput
	// 已通過驗證但角色不符
	KindForbidden
)

type Error struct {
	Kind   Kind
	Reason string
}

func (e *Error) Error() string {
	return e.Reason
}

func notFound(reason string) *Error {
	return &Error{Kind: KindNotFound, Reason: reason}
}

func invalidState(reason string) *Error {
	return &Error{Kind: KindInvalidState, Reason: reason}
}

func invalidInput(reason string) *Error {
	return &Error{Kind: KindInvalidInput, Reason: reason}
}

func forbidden(reason string) *Error {
	return &Error{Kind: KindForbidden, Reason: reason}
}
