package model

// Operation tags every business action for the event log. Tags are part of
// the persisted format: they are fixed forever once assigned, new operations
// get the next free tag, and nothing is ever renumbered. This replaces the
// fragile store-the-ordinal scheme the log design would otherwise invite.
type Operation uint8

const (
	// users
	OpRegister     Operation = 1
	OpConfirm      Operation = 2
	OpAuthenticate Operation = 3
	OpConfigure    Operation = 4
	// sites
	OpLaunch      Operation = 5
	OpRestructure Operation = 6
	// products
	OpConstitute Operation = 7
	// areas
	OpCompart  Operation = 8
	OpLeave    Operation = 9
	OpRelocate Operation = 10
	// versions
	OpTag Operation = 11
	// polls
	OpPoll    Operation = 12
	OpConsent Operation = 13
	OpDissent Operation = 14
	// tasks
	OpPropose     Operation = 15
	OpIndicate    Operation = 16
	OpWarn        Operation = 17
	OpAnnounce    Operation = 18
	OpFork        Operation = 19
	OpConfirmTask Operation = 20
	OpAbsolve     Operation = 21
	OpResolve     Operation = 22
	OpDissolve    Operation = 23
	OpEmphasize   Operation = 24
	OpMark        Operation = 25
	OpDrop        Operation = 26
	OpStart       Operation = 27
)

// operationCount is the number of assigned Operation tags.
const operationCount = 27

func (op Operation) String() string {
	switch op {
	case OpRegister:
		return "register"
	case OpConfirm:
		return "confirm"
	case OpAuthenticate:
		return "authenticate"
	case OpConfigure:
		return "configure"
	case OpLaunch:
		return "launch"
	case OpRestructure:
		return "restructure"
	case OpConstitute:
		return "constitute"
	case OpCompart:
		return "compart"
	case OpLeave:
		return "leave"
	case OpRelocate:
		return "relocate"
	case OpTag:
		return "tag"
	case OpPoll:
		return "poll"
	case OpConsent:
		return "consent"
	case OpDissent:
		return "dissent"
	case OpPropose:
		return "propose"
	case OpIndicate:
		return "indicate"
	case OpWarn:
		return "warn"
	case OpAnnounce:
		return "announce"
	case OpFork:
		return "fork"
	case OpConfirmTask:
		return "confirm-task"
	case OpAbsolve:
		return "absolve"
	case OpResolve:
		return "resolve"
	case OpDissolve:
		return "dissolve"
	case OpEmphasize:
		return "emphasize"
	case OpMark:
		return "mark"
	case OpDrop:
		return "drop"
	case OpStart:
		return "start"
	}
	return "operation?"
}

// OperationFromTag maps a stored wire tag back to its Operation.
func OperationFromTag(tag uint8) (Operation, bool) {
	op := Operation(tag)
	return op, op >= OpRegister && op <= OpStart
}
