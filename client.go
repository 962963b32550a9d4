// Package placement is the entry point for the placement drive workflow.
// It connects to a PMS backend and hands out sessions for editing a drive
// and for publishing its eligible students.
//
// A Client offers:
//   - Drive sessions that load a drive with its companies, jobs and
//     requirements and issue correctly ordered edits
//   - Publish sessions that overlay unsaved eligibility edits on the
//     backend's lists and commit them in one call
//   - Event hooks for published and deleted drives
//
// Example usage:
//
//	pc, err := placement.New(
//	    placement.WithBaseURL("http://localhost:8000"),
//	    placement.WithAPIKey(os.Getenv("PLACEMENT_API_KEY")),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	pc.OnDrivePublished(func(driveID string, jobStudents map[string][]string) {
//	    log.Printf("drive %s published to %d jobs", driveID, len(jobStudents))
//	})
//
//	drive, err := pc.Drive(ctx, "66a1f0")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(drive.State().DriveProgress)
//
//	pub, err := pc.Publish(ctx, "66a1f0")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer pub.Close()
//	_ = pub.Add(jobID, studentID)
//	_, err = pub.Commit(ctx)
package placement

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/agentstation/placement/pkg/backend"
	"github.com/agentstation/placement/pkg/drives"
	"github.com/agentstation/placement/pkg/errors"
	"github.com/agentstation/placement/pkg/logging"
	"github.com/agentstation/placement/pkg/publish"
	"github.com/agentstation/placement/pkg/workflow"
)

// Compile-time interface check to ensure proper implementation.
var _ Client = (*client)(nil)

// Drives opens drive editing sessions.
type Drives interface {
	// NewDrive returns a session with no drive loaded, ready for CreateDrive.
	NewDrive() *workflow.Session

	// Drive loads a drive into a new session.
	Drive(ctx context.Context, driveID string) (*workflow.Session, error)
}

// Publisher opens publish sessions.
type Publisher interface {
	// Publish opens a publish session over the drive's jobs with the
	// roster loaded. The caller must Close it.
	Publish(ctx context.Context, driveID string) (*publish.Session, error)
}

// Roster reads students.
type Roster interface {
	// Students returns every student joined with its performance record.
	Students(ctx context.Context) ([]drives.StudentWithPerformance, error)
}

// Client is the placement system entry point.
type Client interface {
	Drives
	Publisher
	Roster
	Hooks

	// API returns the backend the client talks to.
	API() backend.API
}

// client is the internal implementation of the Client interface.
type client struct {
	options *options
	api     backend.API
	hooks   *hooks
}

// New creates a new Client instance with the given options.
func New(opts ...Option) (Client, error) {
	o, err := defaults().apply(opts...)
	if err != nil {
		return nil, err
	}

	c := &client{
		options: o,
		api:     o.api,
		hooks:   newHooks(),
	}
	if c.api == nil {
		if o.baseURL == "" {
			return nil, errors.NewConfigError("client", "a base URL or a backend is required", nil)
		}
		c.api = backend.NewClient(o.baseURL, o.transportOptions()...)
	}

	o.logger.Debug().Str("base_url", o.baseURL).Msg("Placement client created")
	return c, nil
}

// API returns the backend the client talks to.
func (c *client) API() backend.API {
	return c.api
}

// NewDrive returns a session with no drive loaded.
func (c *client) NewDrive() *workflow.Session {
	s := workflow.New(c.api, workflow.WithLogger(c.options.logger))
	s.OnDriveDeleted(c.hooks.triggerDriveDeleted)
	return s
}

// Drive loads a drive into a new session.
func (c *client) Drive(ctx context.Context, driveID string) (*workflow.Session, error) {
	s := c.NewDrive()
	if err := s.Load(ctx, driveID); err != nil {
		return nil, err
	}
	return s, nil
}

// Publish opens a publish session for the drive.
func (c *client) Publish(ctx context.Context, driveID string) (*publish.Session, error) {
	ctx = logging.WithLogger(ctx, c.options.logger)
	ctx = logging.WithDrive(ctx, driveID)

	if _, err := c.api.GetDrive(ctx, driveID); err != nil {
		return nil, err
	}
	jobs, err := c.api.ListJobsByDrive(ctx, driveID)
	if err != nil {
		return nil, err
	}

	s := publish.Open(c.api, driveID, jobs, publish.WithLogger(c.options.logger))
	if err := s.LoadRoster(ctx); err != nil {
		s.Close()
		return nil, err
	}
	s.OnPublished(c.hooks.triggerDrivePublished)
	return s, nil
}

// Students returns the roster joined with performance records.
func (c *client) Students(ctx context.Context) ([]drives.StudentWithPerformance, error) {
	var (
		students []drives.Student
		perfs    []drives.Performance
	)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		students, err = c.api.ListStudents(egCtx)
		return err
	})
	eg.Go(func() error {
		var err error
		perfs, err = c.api.ListPerformances(egCtx)
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	byStudent := make(map[string]drives.Performance, len(perfs))
	for _, p := range perfs {
		byStudent[p.StudentID] = p
	}
	out := make([]drives.StudentWithPerformance, 0, len(students))
	for _, s := range students {
		row := drives.StudentWithPerformance{Student: s}
		if p, ok := byStudent[s.ID]; ok {
			row.Performance = &p
		}
		out = append(out, row)
	}
	return out, nil
}
