// Package gfxhal brings up the hardware-adaptive state of a GPU device: the
// frozen settings record resolved for its chip revision, and the internal
// compute pipelines that revision needs.
//
// # Overview
//
// A device-detection collaborator produces a [chip.Capabilities] snapshot.
// [Open] runs the settings pipeline against it once:
//
//	Init (defaults + raw overrides) -> Validate -> Override -> Finalize
//
// and publishes the resulting [settings.Record], which is immutable and
// carries a content hash. [Device.Reread] repeats the whole pipeline with a
// fresh override source and swaps in a new record; readers holding the old
// one keep a consistent snapshot.
//
// # Quick Start
//
//	caps, _ := chip.Default(chip.Navi21)
//	dev, err := gfxhal.Open(caps, gfxhal.WithSource(settings.FileSource("gfxhal.yaml")))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer dev.Close()
//
//	rec := dev.Settings()
//	fmt.Println(rec.Settings().BinningFpovsPerBatch, rec.Hash())
//
// # Pipelines
//
// [Device.CreatePipelines] selects the binary table for the device's revision
// and constructs every kind it carries, in kind order. Construction stops at
// the first failure; pipelines built before it are returned in the partial
// [PipelineSet] so the caller decides whether to use or destroy them.
//
// # Errors
//
// [CodeOf] maps any error returned by this module to one of the boundary
// codes: [Success], [UnsupportedRevision], [OutOfMemory],
// [ConstructionFailed] and [NotReady].
//
// # Logging
//
// The module is silent by default. [SetLogger] enables log/slog output for
// the root package and every sub-package.
package gfxhal
