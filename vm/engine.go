package vm

// ActivationState is the lifecycle of one VM run, per spec.md §4.4.3:
// LOADING -> READY -> RUNNING -> {EXITED, FAULTED, SUSPENDED_BUDGET}.
type ActivationState int

const (
	StateLoading ActivationState = iota
	StateReady
	StateRunning
	StateExited
	StateFaulted
	StateSuspendedBudget
)

func (s ActivationState) String() string {
	switch s {
	case StateLoading:
		return "LOADING"
	case StateReady:
		return "READY"
	case StateRunning:
		return "RUNNING"
	case StateExited:
		return "EXITED"
	case StateFaulted:
		return "FAULTED"
	case StateSuspendedBudget:
		return "SUSPENDED_BUDGET"
	default:
		return "UNKNOWN"
	}
}

// VM is one activation: a program counter into a decoded Program, the
// operand/call stack, the host-owned register file, the event window
// for this tick, and the instruction budget that bounds the run.
type VM struct {
	Program   *Program
	Window    EventWindow
	Registers *RegisterSet
	RNG       RNG
	Stack     *Stack

	IP    int
	State ActivationState

	// activeSymmetries is the symmetry set in effect absent an
	// explicit per-instruction override; usesymmetries/restoresymmetries
	// mutate it, savesymmetries/restoresymmetries use the Stack's
	// SymmetrySave slots to checkpoint it.
	activeSymmetries SymmetrySet

	// instSym is the single symmetry sampled for the instruction
	// currently executing, per spec.md §9: one sample per whole
	// instruction, reused by every site dereference it performs.
	instSym Symmetry

	// Paint is the host-visible auxiliary channel at the origin site,
	// read/written by getpaint/setpaint (spec.md §6, "paint" as a
	// host-owned rendering hint distinct from atom data).
	Paint Value

	Budget int
	Steps  int

	Fault *Fault

	// Trace, when non-nil, receives one StepRecord per executed
	// instruction (ambient diagnostics; see trace.go).
	Trace *Trace
}

// NewVM constructs an activation ready to run. budget <= 0 selects
// DefaultInstructionBudget.
func NewVM(p *Program, window EventWindow, regs *RegisterSet, rng RNG, budget int) *VM {
	if budget <= 0 {
		budget = DefaultInstructionBudget
	}
	sym := DefaultSymmetrySet
	if p != nil {
		sym = p.DefaultSymmetries
	}
	return &VM{
		Program:          p,
		Window:           window,
		Registers:        regs,
		RNG:              rng,
		Stack:            NewStack(),
		State:            StateReady,
		activeSymmetries: sym,
		Budget:           budget,
	}
}

// RunResult is the outcome handed back to the host once an activation
// leaves RUNNING.
type RunResult struct {
	State ActivationState
	Fault *Fault
	Steps int
}

// Run drives the activation to completion: EXITED, FAULTED, or
// SUSPENDED_BUDGET (budget exhausted cleanly, never a fault).
func (vm *VM) Run() RunResult {
	vm.State = StateRunning
	for vm.State == StateRunning {
		vm.step()
	}
	return RunResult{State: vm.State, Fault: vm.Fault, Steps: vm.Steps}
}

// step executes exactly one instruction, sampling this instruction's
// symmetry once up front and advancing IP unless the opcode itself set
// a new one (jumps, calls, returns).
func (vm *VM) step() {
	if vm.Budget <= 0 {
		vm.State = StateSuspendedBudget
		return
	}
	if !vm.Program.ValidJumpTarget(vm.IP) {
		vm.raise(FaultInvalidJumpTarget, "ip out of range")
		return
	}

	inst := vm.Program.Code[vm.IP]
	vm.instSym = vm.activeSymmetries.Sample(vm.RNG)

	startIP := vm.IP
	f := vm.dispatch(inst)
	vm.Budget--
	vm.Steps++

	if vm.Trace != nil {
		vm.Trace.Record(StepRecord{
			IP:         startIP,
			Op:         inst.Op,
			StackDepth: vm.Stack.Depth(),
			Symmetry:   vm.instSym,
		})
	}

	if f != nil {
		vm.Fault = f
		vm.State = StateFaulted
		return
	}
	if vm.State == StateExited {
		return
	}
	if vm.IP == startIP {
		vm.IP++
	}
}

// raise records a fault with a top-of-stack snapshot, if one exists.
func (vm *VM) raise(kind FaultKind, detail string) {
	f := newFault(vm.IP, kind, detail)
	if top, err := vm.Stack.PeekValue(0); err == nil {
		f.Top = top
		f.HasTop = true
	}
	vm.Fault = f
	vm.State = StateFaulted
}

func (vm *VM) faultValue(kind FaultKind, detail string) *Fault {
	f := newFault(vm.IP, kind, detail)
	if top, err := vm.Stack.PeekValue(0); err == nil {
		f.Top = top
		f.HasTop = true
	}
	return f
}

// site translates a program-relative site index through this
// instruction's sampled symmetry.
func (vm *VM) site(s int) int {
	return vm.instSym.Permute(s)
}

// argValue resolves an ArgConst operand to its Value, taking it from
// the stack if the operand was written as `_`.
func (vm *VM) argValue(a Arg) (Value, *Fault) {
	if a.Skip {
		v, err := vm.Stack.PopValue()
		if err != nil {
			return Value{}, vm.faultValue(FaultStackUnderflow, err.Error())
		}
		return v, nil
	}
	return a.Const, nil
}

// argIndex resolves a register/site/field/type index operand, taking it
// from the stack (narrowed to int) if written as `_`.
func (vm *VM) argIndex(a Arg) (int, *Fault) {
	if a.Skip {
		v, err := vm.Stack.PopValue()
		if err != nil {
			return 0, vm.faultValue(FaultStackUnderflow, err.Error())
		}
		n, err := SafeInt64ToInt(v.Int64())
		if err != nil {
			return 0, vm.faultValue(FaultInvalidField, err.Error())
		}
		return n, nil
	}
	switch a.Kind {
	case ArgRegister:
		return a.Reg, nil
	case ArgSite:
		return a.Site, nil
	case ArgField:
		return a.Field, nil
	case ArgTypeRef:
		return a.Type, nil
	default:
		return 0, nil
	}
}

// dispatch executes inst and returns a non-nil Fault on failure. It is
// the single switch over the opcode space; each case delegates to the
// per-category executor in the op_*.go files.
func (vm *VM) dispatch(inst Instruction) *Fault {
	// Operand slots an instruction leaves off the end are taken from the
	// stack, exactly as if each had been written `_`.
	if spec := inst.Op.Info().Operands; len(inst.Args) < len(spec) {
		args := make([]Arg, len(spec))
		copy(args, inst.Args)
		for i := len(inst.Args); i < len(spec); i++ {
			args[i] = Arg{Kind: spec[i].Kind, Skip: true}
		}
		inst.Args = args
	}
	switch inst.Op {
	case OpNop:
		return nil
	case OpExit:
		vm.State = StateExited
		return nil

	case OpPush, OpPushLit:
		return vm.execPush(inst.Args)
	case OpPop:
		return vm.execPop(inst.Args)
	case OpDup:
		return vm.execDup(inst.Args)
	case OpOver:
		return vm.execOver(inst.Args)
	case OpSwap:
		return vm.execSwap(inst.Args)
	case OpRot:
		return vm.execRot(inst.Args)

	case OpGetRegister:
		return vm.execGetRegister(inst.Args)
	case OpSetRegister:
		return vm.execSetRegister(inst.Args)
	case OpGetSite:
		return vm.execGetSite(inst.Args)
	case OpSetSite:
		return vm.execSetSite(inst.Args)
	case OpSwapSites:
		return vm.execSwapSites(inst.Args)
	case OpGetParameter:
		return vm.execGetParameter(inst.Args)
	case OpGetType:
		return vm.execGetType(inst.Args)

	case OpGetField:
		return vm.execGetField(inst.Args, false, false)
	case OpGetSignedField:
		return vm.execGetField(inst.Args, false, true)
	case OpGetSiteField:
		return vm.execGetField(inst.Args, true, false)
	case OpGetSignedSiteField:
		return vm.execGetField(inst.Args, true, true)
	case OpSetField:
		return vm.execSetField(inst.Args, false)
	case OpSetSiteField:
		return vm.execSetField(inst.Args, true)

	case OpAdd, OpSub, OpMul, OpDiv, OpMod, OpNeg:
		return vm.execArith(inst.Op, inst.Args)

	case OpLess, OpLessEqual, OpEqual, OpOr, OpAnd, OpXor:
		return vm.execCompare(inst.Op, inst.Args)

	case OpBitAnd, OpBitOr, OpBitXor, OpBitNot, OpBitCount, OpBitScanForward, OpBitScanReverse:
		return vm.execBitwise(inst.Op, inst.Args)

	case OpLshift, OpRshift:
		return vm.execShift(inst.Op, inst.Args)

	case OpChecksum:
		return vm.execChecksum(inst.Args)
	case OpScan:
		return vm.execScan(inst.Args)

	case OpUseSymmetries:
		return vm.execUseSymmetries(inst.Args)
	case OpRestoreSymmetries:
		return vm.execRestoreSymmetries(inst.Args)
	case OpSaveSymmetries:
		return vm.execSaveSymmetries(inst.Args)

	case OpJump:
		return vm.execJump(inst.Args)
	case OpJumpZero:
		return vm.execJumpCond(inst.Args, true)
	case OpJumpNonZero:
		return vm.execJumpCond(inst.Args, false)
	case OpJumpRelativeOffset:
		return vm.execJumpRelative(inst.Args)

	case OpCall:
		return vm.execCall(inst.Args)
	case OpRet:
		return vm.execRet(inst.Args)

	case OpGetPaint:
		return vm.execGetPaint(inst.Args)
	case OpSetPaint:
		return vm.execSetPaint(inst.Args)

	default:
		return vm.faultValue(FaultInvalidJumpTarget, "unknown opcode")
	}
}
