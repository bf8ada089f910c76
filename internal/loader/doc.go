// Package loader reads evaluation inputs from SafeTensors files.
//
// An evaluation set is one file holding a [batch, seq, vocab] predictions
// tensor of log-probabilities and a [batch, seq] targets tensor:
//
//	set, err := loader.LoadEvalSet("eval.safetensors", "predictions", "targets", backend)
//	if err != nil {
//	    return err
//	}
//	res, err := perplexity.Compute(backend, set.Predictions, set.Targets, set.PadID(0))
package loader
