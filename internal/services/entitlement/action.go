package entitlement

// Action действие API лицензий. Набор закрыт: любая строка,
// кроме известных, разбирается в ActionUnknown.
type Action int

const (
	ActionUnknown Action = iota
	ActionInfo
	ActionGet
)

// ParseAction разбирает имя действия из запроса.
func ParseAction(s string) Action {
	switch s {
	case "info":
		return ActionInfo
	case "get":
		return ActionGet
	default:
		return ActionUnknown
	}
}

func (a Action) String() string {
	switch a {
	case ActionInfo:
		return "info"
	case ActionGet:
		return "get"
	default:
		return "unknown"
	}
}
