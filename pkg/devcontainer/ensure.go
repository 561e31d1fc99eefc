package devcontainer

import (
	"context"

	devcerrors "github.com/devc/devc/pkg/errors"
	"github.com/devc/devc/pkg/fingerprint"
	"github.com/devc/devc/pkg/logging"
	"github.com/devc/devc/pkg/project"
)

// StateStore is the part of project.Store used here.
type StateStore interface {
	Read(ctx context.Context) (*project.State, error)
	Update(ctx context.Context, fn func(*project.State) error) error
}

// Ensure makes sure devcontainer.json exists and is current, generating it
// from devc-generate.yml when needed, and records the fingerprints.
//
// A devcontainer.json without a devc-generate.yml is hand-authored and is
// never touched. A generated devcontainer.json that was edited afterwards is
// never overwritten either.
func Ensure(ctx context.Context, files Files, store StateStore) error {
	logger := logging.FromContext(ctx)
	logger.Debug("checking for devcontainer files", logging.WithField("dir", files.Dir))

	genFP, err := files.GenerateFingerprint()
	if err != nil {
		return err
	}
	specFP, err := files.SpecFingerprint()
	if err != nil {
		return err
	}

	st, err := store.Read(ctx)
	if err != nil {
		return err
	}
	storedGen := fingerprint.Fingerprint(st.DevcGenerateHash)
	storedSpec := fingerprint.Fingerprint(st.DevcontainerJSONHash)

	if !specFP.IsAbsent() && genFP.IsAbsent() {
		logger.Debug("devcontainer.json exists but devc-generate.yml not found, skipping generation")
		if storedGen.IsAbsent() && storedSpec == specFP {
			return nil
		}
		return store.Update(ctx, func(st *project.State) error {
			st.DevcGenerateHash = ""
			st.DevcontainerJSONHash = string(specFP)
			return nil
		})
	}

	if !specFP.IsAbsent() && specFP != storedSpec {
		return devcerrors.New(devcerrors.KindConfigDrift,
			"%s has changed since devc last generated it, cannot regenerate. Remove the file and retry", SpecFilename)
	}

	if !fingerprint.NeedsRegeneration(genFP, storedGen, specFP, storedSpec) {
		logger.Debug("devcontainer.json is current, no need to regenerate")
		return nil
	}

	logger.Debug("generating devcontainer files")

	// Marked first so a failed generation is retried on the next run.
	if err := store.Update(ctx, func(st *project.State) error {
		st.DevcGenerateHash = project.GeneratingMarker
		return nil
	}); err != nil {
		return err
	}

	in, err := files.LoadGenerateInput()
	if err != nil {
		return err
	}
	if err := Generate(files, in); err != nil {
		return err
	}

	newSpecFP, err := files.SpecFingerprint()
	if err != nil {
		return err
	}

	logger.Debug("generated devcontainer.json", logging.WithField("hash", string(newSpecFP)))
	return store.Update(ctx, func(st *project.State) error {
		st.DevcontainerJSONHash = string(newSpecFP)
		st.DevcGenerateHash = string(genFP)
		return nil
	})
}

// Report compares the spec files on disk with the recorded fingerprints.
type Report struct {
	Spec     fingerprint.Fingerprint
	Generate fingerprint.Fingerprint
	// GenerateChanged is set when devc-generate.yml differs from the last applied one.
	GenerateChanged bool
	// Interrupted is set when a generation or build did not finish.
	Interrupted bool
	// SpecChanged is set when devcontainer.json differs from the last generated or validated one.
	SpecChanged bool
	// ContainerDrift is set when a cached container was built from a different devcontainer.json.
	ContainerDrift bool
}

// Check builds a Report without changing any state.
func Check(ctx context.Context, files Files, store StateStore) (*Report, error) {
	genFP, err := files.GenerateFingerprint()
	if err != nil {
		return nil, err
	}
	specFP, err := files.SpecFingerprint()
	if err != nil {
		return nil, err
	}

	st, err := store.Read(ctx)
	if err != nil {
		return nil, err
	}

	r := &Report{
		Spec:     specFP,
		Generate: genFP,
		SpecChanged: fingerprint.DetectDrift(specFP,
			fingerprint.Fingerprint(st.DevcontainerJSONHash)),
	}
	switch {
	case st.DevcGenerateHash == project.GeneratingMarker:
		r.Interrupted = true
	case !genFP.IsAbsent():
		r.GenerateChanged = genFP != fingerprint.Fingerprint(st.DevcGenerateHash)
	}
	if st.ContainerID != "" {
		r.ContainerDrift = fingerprint.DetectDrift(specFP, fingerprint.Fingerprint(st.ContainerSpecHash))
	}
	return r, nil
}

// Messages returns the user-facing explanation of each detected change.
func (r *Report) Messages() []string {
	var msgs []string
	if r.Interrupted {
		msgs = append(msgs, "The last devcontainer generation or build did not finish. Run 'devc up' to retry.")
	}
	if r.GenerateChanged {
		msgs = append(msgs, "devc-generate.yml has changed. Run 'devc down' and then 'devc up' to apply changes.")
	}
	if r.SpecChanged {
		msgs = append(msgs, "devcontainer.json has been modified outside of devc. Review the changes, then run 'devc down' and 'devc up' to apply them.")
	}
	if r.ContainerDrift {
		msgs = append(msgs, "The dev container was built from a different devcontainer.json. Run 'devc down' to remove it and try again.")
	}
	return msgs
}
