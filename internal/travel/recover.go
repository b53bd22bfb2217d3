package travel

import (
	"fmt"

	"github.com/pders01/timewarp/internal/errors"
	"github.com/pders01/timewarp/internal/fsutil"
	"github.com/pders01/timewarp/internal/paths"
)

// Recovery outcomes.
const (
	ActionNone          = "none"
	ActionRolledBack    = "rolled_back"
	ActionRolledForward = "rolled_forward"
)

// Recovery describes what Recover did.
type Recovery struct {
	Action string  `json:"action"`
	Intent *Intent `json:"intent,omitempty"`
}

// Recover finishes an interrupted operation. An interrupted travel is rolled
// back so the workspace is in the present with its pre-travel tree. An
// interrupted return is rolled forward, since its clear step has already
// discarded the installed snapshot copy.
func (e *Engine) Recover() (Recovery, error) {
	in, err := e.PendingIntent()
	if err != nil {
		return Recovery{}, err
	}
	if in == nil {
		return Recovery{Action: ActionNone}, nil
	}

	log := e.log.WithField("op", in.Op).WithField("phase", in.Phase)
	switch in.Op {
	case OpTravel:
		if err := e.rollBackTravel(in); err != nil {
			return Recovery{Intent: in}, err
		}
		log.Warn("interrupted travel rolled back")
		return Recovery{Action: ActionRolledBack, Intent: in}, nil
	case OpReturn:
		if err := e.rollForwardReturn(in); err != nil {
			return Recovery{Intent: in}, err
		}
		log.Warn("interrupted return completed")
		return Recovery{Action: ActionRolledForward, Intent: in}, nil
	default:
		return Recovery{Intent: in}, fmt.Errorf("unknown intent op %q in %s", in.Op, e.paths.Intent)
	}
}

func (e *Engine) rollBackTravel(in *Intent) error {
	backupTree := paths.BackupTree(in.BackupPath)
	if !fsutil.DirExists(backupTree) {
		return errors.MissingBackup(in.BackupPath)
	}
	if in.Phase == PhaseInstall {
		if err := fsutil.ClearWorkspace(e.paths.Root); err != nil {
			return fmt.Errorf("clear partially installed snapshot: %w", err)
		}
	}
	if err := fsutil.MoveContentsReplacing(backupTree, e.paths.Root); err != nil {
		return fmt.Errorf("move backup back: %w", err)
	}
	if err := e.states.Save(presentState(e.states.Load())); err != nil {
		return err
	}
	if err := e.clearIntent(); err != nil {
		return err
	}
	e.discardBackup(in.BackupPath)
	return nil
}

func (e *Engine) rollForwardReturn(in *Intent) error {
	backupTree := paths.BackupTree(in.BackupPath)
	if !fsutil.DirExists(backupTree) {
		return errors.MissingBackup(in.BackupPath)
	}
	if in.Phase == PhaseClear {
		if err := fsutil.ClearWorkspace(e.paths.Root); err != nil {
			return fmt.Errorf("clear workspace: %w", err)
		}
	}
	if err := fsutil.MoveContentsReplacing(backupTree, e.paths.Root); err != nil {
		return fmt.Errorf("restore backup: %w", err)
	}
	if err := e.states.Save(presentState(e.states.Load())); err != nil {
		return err
	}
	if err := e.clearIntent(); err != nil {
		return err
	}
	e.discardBackup(in.BackupPath)
	return nil
}
