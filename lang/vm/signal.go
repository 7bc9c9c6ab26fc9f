package vm

// stopAllSignal and stopThisScriptSignal are the two in-band control
// signals: they propagate through the same error channel as runtime errors,
// and are recognized by errors.As at the points that must catch them. This
// avoids threading explicit control-flow flags through every recursive
// call.
type stopAllSignal struct{}

func (stopAllSignal) Error() string { return "stop all" }

type stopThisScriptSignal struct{}

func (stopThisScriptSignal) Error() string { return "stop this script" }
