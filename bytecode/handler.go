package bytecode

// ExceptionHandler describes a try/catch block. The PushExcept instruction
// that opens the block refers to its handler by index.
type ExceptionHandler struct {
	TryStart   int // IP of the first instruction of the try block
	TryEnd     int // IP of the PopExcept closing the try block
	CatchStart int // IP of the catch block
}
