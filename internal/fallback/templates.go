package fallback

import (
	"github.com/tatianab/gamespec/internal/genre"
	"github.com/tatianab/gamespec/internal/models"
)

// templates builds one specification per genre. Every template already
// satisfies the validator, the genre rules and the playability checks.
func templates() map[models.GameType]*models.GameSpecification {
	return map[models.GameType]*models.GameSpecification{
		models.Platformer:    platformer(),
		models.EndlessRunner: endlessRunner(),
		models.Flappy:        flappy(),
		models.Fighting:      fighting(),
		models.Racing:        racing(),
		models.Shooter:       shooter(),
		models.Puzzle:        puzzle(),
		models.TowerDefense:  towerDefense(),
	}
}

func newSpec(gt models.GameType, title, description string, player *models.Player, levels ...models.Level) *models.GameSpecification {
	return &models.GameSpecification{
		Title:       title,
		Description: description,
		GameType:    gt,
		Entities:    []models.Entity{player},
		Levels:      levels,
		GameLogic:   genre.RuleFor(gt).Logic,
	}
}

func player(gt models.GameType, x, y, w, h float64) *models.Player {
	p := genre.DefaultPlayer(gt)
	p.X, p.Y, p.Width, p.Height = x, y, w, h
	return p
}

func block(name string, x, y, w, h float64, color string) models.Platform {
	return models.Platform{
		Base:   models.Base{Name: name, X: x, Y: y, Width: w, Height: h, Color: color},
		Static: true,
	}
}

func ground(x, y, w float64) models.Platform {
	return block("Ground", x, y, w, 50, "#8B4513")
}

func ledge(x, y float64) models.Platform {
	return block("Ledge", x, y, 120, 20, "#8B4513")
}

func coin(name string, x, y float64) models.Collectible {
	return models.Collectible{
		Base:   models.Base{Name: name, X: x, Y: y, Width: 20, Height: 20, Color: "#FFD700"},
		Points: 10,
	}
}

func goal(name string, x, y float64) *models.Goal {
	return &models.Goal{Base: models.Base{Name: name, X: x, Y: y, Width: 40, Height: 60, Color: "#2ECC71"}}
}

func enemy(name string, x, y, w, h float64, gravity bool, speed float64) models.Enemy {
	e := models.Enemy{
		Base:    models.Base{Name: name, X: x, Y: y, Width: w, Height: h, Color: "#E74C3C"},
		Physics: models.Physics{Gravity: gravity},
	}
	if speed > 0 {
		e.Physics.MoveSpeed = models.Float(speed)
	}
	return e
}

func platformer() *models.GameSpecification {
	return newSpec(models.Platformer, "Meadow Run",
		"Hop across floating ledges, grab the coins and touch the flag.",
		player(models.Platformer, 100, 700, 32, 32),
		models.Level{
			Width: 1600, Height: 800, Background: "#87CEEB",
			Platforms: []models.Platform{
				ground(0, 750, 1600),
				ledge(300, 620),
				ledge(520, 520),
				ledge(760, 430),
				ledge(1000, 520),
			},
			Collectibles: []models.Collectible{
				coin("Coin", 350, 590),
				coin("Coin", 570, 490),
				coin("Coin", 810, 400),
			},
			Enemies: []models.Enemy{enemy("Slime", 900, 718, 32, 32, true, 80)},
			Goal:    goal("Flag", 1400, 690),
		})
}

func endlessRunner() *models.GameSpecification {
	return newSpec(models.EndlessRunner, "Rooftop Dash",
		"Keep running, jump the gap and dodge the crates.",
		player(models.EndlessRunner, 100, 700, 32, 32),
		models.Level{
			Width: 2400, Height: 800, Background: "#F4A460",
			Platforms: []models.Platform{
				ground(0, 750, 1000),
				block("Bridge", 1040, 650, 120, 20, "#8B4513"),
				ground(1200, 750, 1200),
			},
			Collectibles: []models.Collectible{
				coin("Coin", 500, 680),
				coin("Coin", 1090, 600),
				coin("Coin", 1800, 680),
			},
			Enemies: []models.Enemy{enemy("Crate", 1600, 718, 32, 32, true, 0)},
			Goal:    goal("Finish", 2200, 690),
		})
}

func flappy() *models.GameSpecification {
	pipe := func(x, y, h float64) models.Platform {
		return block("Pipe", x, y, 80, h, "#2E8B57")
	}
	return newSpec(models.Flappy, "Pipe Glide",
		"Flap through the gaps between the pipes to reach the nest.",
		player(models.Flappy, 150, 280, 34, 24),
		models.Level{
			Width: 2400, Height: 600, Background: "#70C5CE",
			Platforms: []models.Platform{
				pipe(600, 0, 200), pipe(600, 400, 200),
				pipe(1000, 0, 140), pipe(1000, 340, 260),
				pipe(1400, 0, 240), pipe(1400, 440, 160),
			},
			Collectibles: []models.Collectible{
				coin("Star", 630, 290),
				coin("Star", 1030, 230),
				coin("Star", 1430, 330),
			},
			Goal: goal("Nest", 2200, 260),
		})
}

func fighting() *models.GameSpecification {
	return newSpec(models.Fighting, "Dojo Duel",
		"Two fighters, one arena. Knock your rival out.",
		player(models.Fighting, 200, 486, 48, 64),
		models.Level{
			Width: 1200, Height: 600, Background: "#2C3E50",
			Platforms: []models.Platform{
				ground(0, 550, 1200),
				block("Left Ledge", 200, 400, 200, 20, "#7F8C8D"),
				block("Right Ledge", 800, 400, 200, 20, "#7F8C8D"),
			},
			Enemies: []models.Enemy{enemy("Rival", 950, 486, 48, 64, true, 200)},
		})
}

func racing() *models.GameSpecification {
	barriers := genre.BoundaryBarriers(1600, 800)
	infield := block("Infield Barrier", 400, 250, 800, 300, "#555555")
	infield.Barrier = true

	rival := enemy("Rival Car", 100, 460, 40, 24, false, 0)
	rival.Physics.MaxSpeed = models.Float(380)

	return newSpec(models.Racing, "Circuit Sprint",
		"Lap the infield and cross the finish line before your rival.",
		player(models.Racing, 100, 400, 40, 24),
		models.Level{
			Width: 1600, Height: 800, Background: "#3B3B3B",
			Platforms:    append(barriers, infield),
			Collectibles: []models.Collectible{
				coin("Boost Pad", 800, 150),
				coin("Boost Pad", 800, 650),
			},
			Enemies: []models.Enemy{rival},
			Goal:    goal("Finish Line", 1400, 380),
		})
}

func shooter() *models.GameSpecification {
	return newSpec(models.Shooter, "Star Patrol",
		"Hold the line against the drone wave.",
		player(models.Shooter, 384, 520, 32, 32),
		models.Level{
			Width: 800, Height: 600, Background: "#0B0C2A",
			Platforms:    []models.Platform{},
			Collectibles: []models.Collectible{
				coin("Power Core", 390, 300),
			},
			Enemies: []models.Enemy{
				enemy("Drone", 150, 80, 32, 32, false, 120),
				enemy("Drone", 384, 60, 32, 32, false, 120),
				enemy("Drone", 620, 80, 32, 32, false, 120),
			},
		})
}

func puzzle() *models.GameSpecification {
	return newSpec(models.Puzzle, "Key Room",
		"Push the crates aside, take the key and open the door.",
		player(models.Puzzle, 100, 500, 32, 32),
		models.Level{
			Width: 800, Height: 600, Background: "#DDD5C7",
			Platforms: []models.Platform{
				block("Crate", 300, 450, 40, 40, "#A0522D"),
				block("Crate", 300, 510, 40, 40, "#A0522D"),
				block("Crate", 560, 480, 40, 40, "#A0522D"),
			},
			Collectibles: []models.Collectible{coin("Key", 400, 480)},
			Goal:         goal("Exit Door", 700, 460),
		})
}

func towerDefense() *models.GameSpecification {
	pad := func(x, y float64) models.Platform {
		return block("Tower Pad", x, y, 60, 60, "#95A5A6")
	}
	return newSpec(models.TowerDefense, "Last Outpost",
		"Build towers along the road and stop the creeps before they reach the base.",
		player(models.TowerDefense, 100, 400, 32, 32),
		models.Level{
			Width: 1600, Height: 800, Background: "#6B8E23",
			Platforms:    []models.Platform{pad(400, 300), pad(800, 500), pad(1200, 300)},
			Collectibles: []models.Collectible{coin("Gold", 600, 400)},
			Enemies: []models.Enemy{
				enemy("Creep", 0, 380, 24, 24, false, 60),
				enemy("Creep", 40, 420, 24, 24, false, 60),
			},
			Goal: goal("Base", 1400, 380),
		})
}
