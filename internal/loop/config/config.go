// Package config centralizes session and presentation constants. Gameplay
// tuning lives in the YAML-backed internal/config package.
package config

import "time"

// Render area clamp. Larger terminals get a centered, bordered play area.
const (
	MaxTermWidth  = 120
	MaxTermHeight = 60
)

// Player
const (
	MaxUsernameLength = 16 // Maximum display length for player usernames
)

// Game over
const (
	GameOverRevealDelay = 1500 * time.Millisecond
	LeaderboardSize     = 5
)

// Trajectory preview
const (
	TrajectorySteps = 48
	TrajectoryStep  = 1.0 / 30 // seconds between preview dots
)

// Screen shake (duration in seconds, magnitude in logical units)
const (
	ShakeOverpowerDuration = 0.15
	ShakeOverpowerStrength = 6
	ShakeBounceDuration    = 0.2
	ShakeBounceStrength    = 8
	ShakeHazardDuration    = 0.25
	ShakeHazardStrength    = 10
	ShakeDeathDuration     = 0.5
	ShakeDeathStrength     = 18
)

// Shutdown
const (
	ShutdownDisplaySeconds = 10.0 // Seconds to show shutdown message before auto-disconnect
)

// Inactivity
const (
	InactivityWarnUser       = 90  // Seconds
	InactivityDisconnectUser = 120 // Seconds
)

// Client rendering
const (
	ClientTargetFPS       = 60
	ClientTargetFrameTime = time.Second / ClientTargetFPS
)
