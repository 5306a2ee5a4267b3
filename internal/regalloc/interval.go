package regalloc

import "github.com/xyproto/jitasm/internal/operand"

// LiveInterval is the allocator's view of one virtual register's
// lifetime: its first and last program position, and where it ends up —
// either a physical register or a spill slot (spec §3 Live interval,
// adapted from the teacher's LiveInterval/RegisterAllocator lineage).
type LiveInterval struct {
	VRegID int
	Class  operand.RegClass
	Size   int
	Start  int
	End    int

	Physical  operand.Reg
	HasPhys   bool
	Spilled   bool
	SpillSlot int

	IsArg    bool
	ArgIndex int
	IsRet    bool
	Hint     *operand.Reg
}
