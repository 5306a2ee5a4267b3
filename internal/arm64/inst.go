package arm64

// InstID is the dense AArch64 instruction-id namespace (spec §4.6).
type InstID int

const (
	IAdd InstID = iota
	ISub
	IAnd
	IOrr
	IEor
	ICmp
	ITst

	IMov   // pseudo: ORR Xd, XZR, Xm (reg) or MOVZ/MOVK sequence (imm)
	IMovz
	IMovk
	IMovn

	ILsl
	ILsr
	IAsr

	IMul  // MADD Xd, Xn, Xm, XZR
	ISdiv
	IUdiv

	ILdr
	IStr
	ILdp
	IStp

	IAdr // PC-relative address load (ADR/ADRP)

	IB
	IBcond
	ICbz
	ICbnz
	IBl
	IBr
	IBlr
	IRet

	ISvc
	INop
)

// ArchTag is the value ir.Node.Arch carries for AArch64 instructions.
const ArchTag = 1

// Cond is an AArch64 condition code (spec §2 AArch64).
type Cond uint8

const (
	CondEQ Cond = iota
	CondNE
	CondCS
	CondCC
	CondMI
	CondPL
	CondVS
	CondVC
	CondHI
	CondLS
	CondGE
	CondLT
	CondGT
	CondLE
	CondAL
)
