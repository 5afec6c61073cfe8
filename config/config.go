// Package config holds every tunable literal referenced in spec.md §4 and
// enumerated as the configuration surface in §6. Strategies read these
// fields; none of the numbers below are ever hardcoded in strategy code.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the root configuration object for the faction AI core.
type Config struct {
	Logging  LoggingConfig  `mapstructure:"logging"`
	Dispatch DispatchConfig `mapstructure:"dispatch"`
	Flanking FlankingConfig `mapstructure:"flanking"`
	Retreat  RetreatConfig  `mapstructure:"retreat"`
	Territorial TerritorialConfig `mapstructure:"territorial"`
	Formation   FormationConfig   `mapstructure:"formation"`
	Swarm       SwarmConfig       `mapstructure:"swarm"`
	Mining      MiningConfig      `mapstructure:"mining"`
	Pirate      PirateConfig      `mapstructure:"pirate"`
	Queen       QueenConfig       `mapstructure:"queen"`
	Leviathan   LeviathanConfig   `mapstructure:"leviathan"`
	Rage        RageConfig        `mapstructure:"rage"`
}

// LoggingConfig configures the ambient logger (see logging.Config).
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	JSONOutput bool   `mapstructure:"json_output"`
}

// DispatchConfig holds the faction-level thresholds and the single
// cross-faction special-case gate from §4.1.
type DispatchConfig struct {
	RetreatThresholds map[string]float64 `mapstructure:"retreat_thresholds"` // faction -> hull fraction
	QueenGuardRange    float64            `mapstructure:"queen_guard_range"`
	AllyRadius         float64            `mapstructure:"ally_radius"` // 500, §2/§3.3; only Validate reads it: neighborhood.Build uses its fixed neighborhood.AllyRadius constant
	DefaultFireCooldownMs int64           `mapstructure:"default_fire_cooldown_ms"`
}

// FlankingConfig backs the pirate baseline strategy (§4.2).
type FlankingConfig struct {
	FocusFireBonusPerAlly float64 `mapstructure:"focus_fire_bonus_per_ally"`
	ApproachRangeFrac     float64 `mapstructure:"approach_range_frac"` // 0.8 x weapon range
	RetreatSpeedMult      float64 `mapstructure:"retreat_speed_mult"`  // 1.3x
	RetreatArriveRadius   float64 `mapstructure:"retreat_arrive_radius"`
	FlankArcDegrees       float64 `mapstructure:"flank_arc_degrees"` // 270
}

// RetreatConfig backs the scavenger baseline strategy (§4.3).
type RetreatConfig struct {
	FireCooldownMs     int64   `mapstructure:"fire_cooldown_ms"` // 800
	EngageRangeFrac     float64 `mapstructure:"engage_range_frac"` // 0.9 x weapon range
	RetreatHomeWeight   float64 `mapstructure:"retreat_home_weight"`   // 0.70
	RetreatAwayWeight   float64 `mapstructure:"retreat_away_weight"`   // 0.30
	RetreatSpeedMult    float64 `mapstructure:"retreat_speed_mult"`    // 1.4x
	HealHullPctPerSec   float64 `mapstructure:"heal_hull_pct_per_sec"`   // 0.15
	HealShieldPctPerSec float64 `mapstructure:"heal_shield_pct_per_sec"` // 0.20
	HealUntilHullFrac   float64 `mapstructure:"heal_until_hull_frac"`    // 0.80
	PatrolRadius        float64 `mapstructure:"patrol_radius"`           // 350
	IsolationWeight     float64 `mapstructure:"isolation_weight"`
	ProximityDivisor    float64 `mapstructure:"proximity_divisor"` // 50
	DamagedWeight       float64 `mapstructure:"damaged_weight"`    // 50
}

// TerritorialConfig backs the rogue-miner baseline strategy (§4.4).
type TerritorialConfig struct {
	DefaultTerritoryRadius float64 `mapstructure:"default_territory_radius"` // 500
	WarningDurationMs      int64   `mapstructure:"warning_duration_ms"`      // 3000
	WarningApproachFrac    float64 `mapstructure:"warning_approach_frac"`    // 1.2 x weapon range
	PursueClampFrac        float64 `mapstructure:"pursue_clamp_frac"`        // 0.9 x territoryRadius
	DefenderDamageBonus    float64 `mapstructure:"defender_damage_bonus"`    // 0.20
}

// FormationConfig backs the void baseline strategy (§4.5).
type FormationConfig struct {
	RowSpacing          float64 `mapstructure:"row_spacing"`           // 80
	FollowerCatchupMult float64 `mapstructure:"follower_catchup_mult"` // up to 1.5x
	LeaderApproachFrac  float64 `mapstructure:"leader_approach_frac"`  // 0.70 x weapon range
	LeaderBackoffFrac   float64 `mapstructure:"leader_backoff_frac"`   // 0.50 x weapon range
	BaseFireCooldownMs  int64   `mapstructure:"base_fire_cooldown_ms"` // 1200
	VolleyStaggerMs     int64   `mapstructure:"volley_stagger_ms"`     // 100 per follower index
	ConfusionMs         int64   `mapstructure:"confusion_ms"`          // 1000
	ReformingMs         int64   `mapstructure:"reforming_ms"`          // 3000
	RetreatSpeedMult    float64 `mapstructure:"retreat_speed_mult"`    // 1.1x
}

// SwarmConfig backs the swarm collective and the linked-damage pass (§4.6).
type SwarmConfig struct {
	DronePatrolRadiusMin float64 `mapstructure:"drone_patrol_radius_min"` // 300
	DronePatrolRadiusMax float64 `mapstructure:"drone_patrol_radius_max"` // 500
	DroneOrbitSpeed      float64 `mapstructure:"drone_orbit_speed"`       // 0.3 rad/s
	WorkerPatrolRadius   float64 `mapstructure:"worker_patrol_radius"`    // 250
	WorkerOrbitSpeed     float64 `mapstructure:"worker_orbit_speed"`      // 0.5
	WarriorPatrolRadius  float64 `mapstructure:"warrior_patrol_radius"`   // 180
	WarriorOrbitSpeed    float64 `mapstructure:"warrior_orbit_speed"`     // 0.7
	GuardInnerRadius     float64 `mapstructure:"guard_inner_radius"`      // 40
	GuardOuterRadius     float64 `mapstructure:"guard_outer_radius"`      // 80
	GuardOrbitSpeed      float64 `mapstructure:"guard_orbit_speed"`       // 2.0
	GuardInterceptRadius float64 `mapstructure:"guard_intercept_radius"`  // 120
	GuardInterceptFrac   float64 `mapstructure:"guard_intercept_frac"`    // 0.70 between player and queen
	CombatFireCooldownMs int64   `mapstructure:"combat_fire_cooldown_ms"` // 800
	OrbitTightenPerMs    float64 `mapstructure:"orbit_tighten_per_ms"`    // 0.01
	OrbitMinFrac         float64 `mapstructure:"orbit_min_frac"`          // 0.6 x weapon range
	LinkedDamagePct      float64 `mapstructure:"linked_damage_pct"`       // 0.20
	LinkedDamageRadius   float64 `mapstructure:"linked_damage_radius"`    // 300
	DroneAssimilateSpeed float64 `mapstructure:"drone_assimilate_speed"`
	AssimilateRange      float64 `mapstructure:"assimilate_range"`

	// AssimilateTriggerRadius/Interval gate the engine's cross-cutting scan
	// that redirects an idle drone/worker onto the assimilation path (§4.6
	// names the seeking_base/assimilate/frozen-passenger states but leaves
	// what starts the walk unspecified; this core decides it here rather
	// than in strategy code, per §6's "every tunable lives in config").
	AssimilateTriggerRadius    float64 `mapstructure:"assimilate_trigger_radius"`     // 1500
	AssimilateTriggerIntervalMs int64  `mapstructure:"assimilate_trigger_interval_ms"` // 5000
}

// MiningConfig backs the rogue-miner mining strategy (§4.7).
type MiningConfig struct {
	SearchRadius         float64 `mapstructure:"search_radius"`          // 2000
	NearestCandidateCount int     `mapstructure:"nearest_candidate_count"` // 5
	MiningDurationMs     int64   `mapstructure:"mining_duration_ms"`      // 3000
	ReturnSpeedFrac      float64 `mapstructure:"return_speed_frac"`       // 0.7
	ForemanSpeedMult     float64 `mapstructure:"foreman_speed_mult"`      // 3.0
	DepositRadius        float64 `mapstructure:"deposit_radius"`          // 80
	DepositDurationMs    int64   `mapstructure:"deposit_duration_ms"`     // 1000
	DepositCreditBase    int     `mapstructure:"deposit_credit_base"`     // 2
	DepositCreditForeman int     `mapstructure:"deposit_credit_foreman"`  // 6
	RageRadius           float64 `mapstructure:"rage_radius"`             // 3000
	RageSpeedMult        float64 `mapstructure:"rage_speed_mult"`         // 1.3
	RageEngageFrac       float64 `mapstructure:"rage_engage_frac"`        // 0.6 x weapon range
	RageFireCooldownMs   int64   `mapstructure:"rage_fire_cooldown_ms"`      // 300 w/ foreman
	RageFireCooldownNoFormanMs int64 `mapstructure:"rage_fire_cooldown_no_foreman_ms"` // 1000
	RetreatHullFrac      float64 `mapstructure:"retreat_hull_frac"` // 0.5 baseline default, §4.1
}

// PirateConfig backs scout/fighter/captain/dreadnought (§4.8).
type PirateConfig struct {
	ScoutPatrolRadius      float64 `mapstructure:"scout_patrol_radius"`       // 800
	ScoutEspionageMs       int64   `mapstructure:"scout_espionage_ms"`        // 1000
	ScoutFleeSpeedMult     float64 `mapstructure:"scout_flee_speed_mult"`     // 1.5
	ScoutRaidOrbitMin      float64 `mapstructure:"scout_raid_orbit_min"`      // 350
	ScoutRaidOrbitMax      float64 `mapstructure:"scout_raid_orbit_max"`      // 450
	ScoutRaidFireCooldownMs int64  `mapstructure:"scout_raid_fire_cooldown_ms"` // 1500
	ScoutLoseTargetSec     float64 `mapstructure:"scout_lose_target_sec"`     // 10
	ScoutChaseRadius       float64 `mapstructure:"scout_chase_radius"`        // 2500

	FighterCircleRadius    float64 `mapstructure:"fighter_circle_radius"`     // 300 (250+50)
	FighterCircleSpeed     float64 `mapstructure:"fighter_circle_speed"`      // 0.8 rad/s
	BoostDiveCooldownMs    int64   `mapstructure:"boost_dive_cooldown_ms"`    // 4000
	BoostDiveSpeedMult     float64 `mapstructure:"boost_dive_speed_mult"`     // 3.5
	BoostDiveMaxMs         int64   `mapstructure:"boost_dive_max_ms"`         // 2500
	BoostDiveFireRange     float64 `mapstructure:"boost_dive_fire_range"`     // 150
	BoostDiveDamageMult    float64 `mapstructure:"boost_dive_damage_mult"`    // 1.5
	BoostDiveShieldPierce  float64 `mapstructure:"boost_dive_shield_pierce"`  // 0.10
	BoostDiveCooldownBackSpeedMult float64 `mapstructure:"boost_dive_cooldown_back_speed_mult"` // 0.8
	BoostDiveCooldownBackMs int64 `mapstructure:"boost_dive_cooldown_back_ms"` // 4000

	CaptainFleeHullFrac    float64 `mapstructure:"captain_flee_hull_frac"`    // 0.3
	CaptainHealHullPctPerSec float64 `mapstructure:"captain_heal_hull_pct_per_sec"` // 0.15
	CaptainHealShieldPctPerSec float64 `mapstructure:"captain_heal_shield_pct_per_sec"` // 0.20
	CaptainReengageHullFrac float64 `mapstructure:"captain_reengage_hull_frac"` // 0.8
	CaptainStealRange      float64 `mapstructure:"captain_steal_range"`       // 150

	DreadnoughtSpawnHealthFrac float64 `mapstructure:"dreadnought_spawn_health_frac"` // 0.25
	DreadnoughtSpawnMs     int64   `mapstructure:"dreadnought_spawn_ms"`       // 1000
	DreadnoughtStandoffMin float64 `mapstructure:"dreadnought_standoff_min"`  // 400
	DreadnoughtStandoffMax float64 `mapstructure:"dreadnought_standoff_max"`  // 700
	DreadnoughtFireCooldownMs int64 `mapstructure:"dreadnought_fire_cooldown_ms"` // 1200
	DreadnoughtShieldPierce float64 `mapstructure:"dreadnought_shield_pierce"` // 0.10
	DreadnoughtBlockChance float64 `mapstructure:"dreadnought_block_chance"`  // 0.35
	DreadnoughtEnragedSpeedMult float64 `mapstructure:"dreadnought_enraged_speed_mult"` // 2.0
	DreadnoughtEnragedFireCooldownMs int64 `mapstructure:"dreadnought_enraged_fire_cooldown_ms"` // 800
	DreadnoughtEnragedDamageMult float64 `mapstructure:"dreadnought_enraged_damage_mult"` // 1.25
	DreadnoughtEnragedMinAggroRange float64 `mapstructure:"dreadnought_enraged_min_aggro_range"` // 1500

	StealCooldownMs        int64   `mapstructure:"steal_cooldown_ms"`         // 10000
	StealRange             float64 `mapstructure:"steal_range"`               // 150
	StealScrapItems        int     `mapstructure:"steal_scrap_items"`         // 2
	StealClaimCreditsFrac  float64 `mapstructure:"steal_claim_credits_frac"`  // 0.15

	IntelValidityMs        int64   `mapstructure:"intel_validity_ms"`         // 30000
	IntelBroadcastRadius   float64 `mapstructure:"intel_broadcast_radius"`    // 1000
}

// QueenConfig backs the Swarm Queen boss (§4.9).
type QueenConfig struct {
	PhaseHuntMinFrac    float64 `mapstructure:"phase_hunt_min_frac"` // p1
	PhaseSiegeMinFrac   float64 `mapstructure:"phase_siege_min_frac"` // p2
	PhaseSwarmMinFrac   float64 `mapstructure:"phase_swarm_min_frac"` // p3, <=p3 is desperation
	HuntSpeedMult       float64 `mapstructure:"hunt_speed_mult"`
	HuntDamageMult      float64 `mapstructure:"hunt_damage_mult"`
	SiegeSpeedMult      float64 `mapstructure:"siege_speed_mult"`
	SiegeDamageMult     float64 `mapstructure:"siege_damage_mult"`
	DesperationSpeedMult float64 `mapstructure:"desperation_speed_mult"`
	DesperationDamageMult float64 `mapstructure:"desperation_damage_mult"`
	PatrolRadius        float64 `mapstructure:"patrol_radius"`       // 300
	PatrolRadiusJitter  float64 `mapstructure:"patrol_radius_jitter"` // 50
	PatrolOrbitSpeed    float64 `mapstructure:"patrol_orbit_speed"`  // 0.15
	WebSnareCooldownMs  int64   `mapstructure:"web_snare_cooldown_ms"`
	WebSnareChargeMs    int64   `mapstructure:"web_snare_charge_ms"`
	WebSnareProjectileSpeed float64 `mapstructure:"web_snare_projectile_speed"`
	WebSnareRadius      float64 `mapstructure:"web_snare_radius"`
	WebSnareDurationMs  int64   `mapstructure:"web_snare_duration_ms"`
	WebSnareSlowPct     float64 `mapstructure:"web_snare_slow_pct"`
	AcidBurstCooldownMs int64   `mapstructure:"acid_burst_cooldown_ms"`
	AcidBurstRadius     float64 `mapstructure:"acid_burst_radius"`
	AcidBurstDamage     float64 `mapstructure:"acid_burst_damage"`
	AcidBurstDotInterval int64  `mapstructure:"acid_burst_dot_interval_ms"`
	AcidBurstDotDurationMs int64 `mapstructure:"acid_burst_dot_duration_ms"`
	DesperationCooldownDivisor float64 `mapstructure:"desperation_cooldown_divisor"` // 2 (halved)
}

// LeviathanConfig backs the Void Leviathan boss (§4.10).
type LeviathanConfig struct {
	HealthThresholds []MinionThreshold `mapstructure:"health_thresholds"`
	ContinuousIntervalMs int64 `mapstructure:"continuous_interval_ms"`
	MaxActiveMinions int `mapstructure:"max_active_minions"`

	GravityWellWarningMs int64 `mapstructure:"gravity_well_warning_ms"`
	GravityWellActiveMs  int64 `mapstructure:"gravity_well_active_ms"`
	GravityWellRadius    float64 `mapstructure:"gravity_well_radius"`
	GravityWellPullStrength float64 `mapstructure:"gravity_well_pull_strength"`
	GravityWellDamageEdge float64 `mapstructure:"gravity_well_damage_edge"`
	GravityWellDamageCenter float64 `mapstructure:"gravity_well_damage_center"`
	GravityWellCooldownMs int64 `mapstructure:"gravity_well_cooldown_ms"`

	ConsumeRange        float64 `mapstructure:"consume_range"`
	ConsumeHullWeight    float64 `mapstructure:"consume_hull_weight"`   // 0.7
	ConsumeProximityWeight float64 `mapstructure:"consume_proximity_weight"` // 0.3
	ConsumeTendrilSpeed float64 `mapstructure:"consume_tendril_speed"`
	ConsumeDragMs       int64   `mapstructure:"consume_drag_ms"`
	ConsumeHealMultiplier float64 `mapstructure:"consume_heal_multiplier"`
	ConsumeCooldownMs   int64   `mapstructure:"consume_cooldown_ms"`

	CombatApproachFrac  float64 `mapstructure:"combat_approach_frac"` // 0.7 x weapon range
	CombatFireCooldownMs int64  `mapstructure:"combat_fire_cooldown_ms"` // 1000
}

// MinionThreshold is one entry of Leviathan's health-threshold spawn table.
type MinionThreshold struct {
	HealthFrac float64 `mapstructure:"health_frac"`
	Rifts      int     `mapstructure:"rifts"`
}

// RageConfig backs the orphaned-NPC fallback (§4.11).
type RageConfig struct {
	SpeedMult      float64 `mapstructure:"speed_mult"`       // 1.2
	DamageMult     float64 `mapstructure:"damage_mult"`      // 1.2
	FireCooldownMs int64   `mapstructure:"fire_cooldown_ms"` // 800
}

// Default returns the documented default configuration. Every literal here
// is the value named inline in spec.md §4; Load overrides from file/env.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "info", JSONOutput: false},
		Dispatch: DispatchConfig{
			RetreatThresholds: map[string]float64{
				"pirate": 0.4, "scavenger": 0.2, "swarm": 0.0, "void": 0.3, "rogue_miner": 0.5,
			},
			QueenGuardRange:       600,
			AllyRadius:            500,
			DefaultFireCooldownMs: 1000,
		},
		Flanking: FlankingConfig{
			FocusFireBonusPerAlly: 2,
			ApproachRangeFrac:     0.8,
			RetreatSpeedMult:      1.3,
			RetreatArriveRadius:   100,
			FlankArcDegrees:       270,
		},
		Retreat: RetreatConfig{
			FireCooldownMs:      800,
			EngageRangeFrac:     0.9,
			RetreatHomeWeight:   0.70,
			RetreatAwayWeight:   0.30,
			RetreatSpeedMult:    1.4,
			HealHullPctPerSec:   0.15,
			HealShieldPctPerSec: 0.20,
			HealUntilHullFrac:   0.80,
			PatrolRadius:        350,
			IsolationWeight:     1.0,
			ProximityDivisor:    50,
			DamagedWeight:       50,
		},
		Territorial: TerritorialConfig{
			DefaultTerritoryRadius: 500,
			WarningDurationMs:      3000,
			WarningApproachFrac:    1.2,
			PursueClampFrac:        0.9,
			DefenderDamageBonus:    0.20,
		},
		Formation: FormationConfig{
			RowSpacing:          80,
			FollowerCatchupMult: 1.5,
			LeaderApproachFrac:  0.70,
			LeaderBackoffFrac:   0.50,
			BaseFireCooldownMs:  1200,
			VolleyStaggerMs:     100,
			ConfusionMs:         1000,
			ReformingMs:         3000,
			RetreatSpeedMult:    1.1,
		},
		Swarm: SwarmConfig{
			DronePatrolRadiusMin: 300,
			DronePatrolRadiusMax: 500,
			DroneOrbitSpeed:      0.3,
			WorkerPatrolRadius:   250,
			WorkerOrbitSpeed:     0.5,
			WarriorPatrolRadius:  180,
			WarriorOrbitSpeed:    0.7,
			GuardInnerRadius:     40,
			GuardOuterRadius:     80,
			GuardOrbitSpeed:      2.0,
			GuardInterceptRadius: 120,
			GuardInterceptFrac:   0.70,
			CombatFireCooldownMs: 800,
			OrbitTightenPerMs:    0.01,
			OrbitMinFrac:         0.6,
			LinkedDamagePct:      0.20,
			LinkedDamageRadius:   300,
			DroneAssimilateSpeed: 120,
			AssimilateRange:      50,

			AssimilateTriggerRadius:     1500,
			AssimilateTriggerIntervalMs: 5000,
		},
		Mining: MiningConfig{
			SearchRadius:          2000,
			NearestCandidateCount: 5,
			MiningDurationMs:      3000,
			ReturnSpeedFrac:       0.7,
			ForemanSpeedMult:      3.0,
			DepositRadius:         80,
			DepositDurationMs:     1000,
			DepositCreditBase:     2,
			DepositCreditForeman:  6,
			RageRadius:            3000,
			RageSpeedMult:         1.3,
			RageEngageFrac:        0.6,
			RageFireCooldownMs:    300,
			RageFireCooldownNoFormanMs: 1000,
			RetreatHullFrac:       0.5,
		},
		Pirate: PirateConfig{
			ScoutPatrolRadius:       800,
			ScoutEspionageMs:        1000,
			ScoutFleeSpeedMult:      1.5,
			ScoutRaidOrbitMin:       350,
			ScoutRaidOrbitMax:       450,
			ScoutRaidFireCooldownMs: 1500,
			ScoutLoseTargetSec:      10,
			ScoutChaseRadius:        2500,

			FighterCircleRadius: 300,
			FighterCircleSpeed:  0.8,
			BoostDiveCooldownMs: 4000,
			BoostDiveSpeedMult:  3.5,
			BoostDiveMaxMs:      2500,
			BoostDiveFireRange:  150,
			BoostDiveDamageMult: 1.5,
			BoostDiveShieldPierce: 0.10,
			BoostDiveCooldownBackSpeedMult: 0.8,
			BoostDiveCooldownBackMs: 4000,

			CaptainFleeHullFrac:        0.3,
			CaptainHealHullPctPerSec:   0.15,
			CaptainHealShieldPctPerSec: 0.20,
			CaptainReengageHullFrac:    0.8,
			CaptainStealRange:          150,

			DreadnoughtSpawnHealthFrac:      0.25,
			DreadnoughtSpawnMs:              1000,
			DreadnoughtStandoffMin:          400,
			DreadnoughtStandoffMax:          700,
			DreadnoughtFireCooldownMs:       1200,
			DreadnoughtShieldPierce:         0.10,
			DreadnoughtBlockChance:          0.35,
			DreadnoughtEnragedSpeedMult:     2.0,
			DreadnoughtEnragedFireCooldownMs: 800,
			DreadnoughtEnragedDamageMult:    1.25,
			DreadnoughtEnragedMinAggroRange: 1500,

			StealCooldownMs:       10000,
			StealRange:            150,
			StealScrapItems:       2,
			StealClaimCreditsFrac: 0.15,

			IntelValidityMs:      30000,
			IntelBroadcastRadius: 1000,
		},
		Queen: QueenConfig{
			PhaseHuntMinFrac:      0.75,
			PhaseSiegeMinFrac:     0.50,
			PhaseSwarmMinFrac:     0.25,
			HuntSpeedMult:         1.0,
			HuntDamageMult:        1.0,
			SiegeSpeedMult:        0.7,
			SiegeDamageMult:       1.1,
			DesperationSpeedMult:  1.5,
			DesperationDamageMult: 1.4,
			PatrolRadius:          300,
			PatrolRadiusJitter:    50,
			PatrolOrbitSpeed:      0.15,
			WebSnareCooldownMs:    12000,
			WebSnareChargeMs:      1500,
			WebSnareProjectileSpeed: 400,
			WebSnareRadius:        250,
			WebSnareDurationMs:    4000,
			WebSnareSlowPct:       0.5,
			AcidBurstCooldownMs:   9000,
			AcidBurstRadius:       200,
			AcidBurstDamage:       40,
			AcidBurstDotInterval:  1000,
			AcidBurstDotDurationMs: 5000,
			DesperationCooldownDivisor: 2,
		},
		Leviathan: LeviathanConfig{
			HealthThresholds: []MinionThreshold{
				{HealthFrac: 0.75, Rifts: 2},
				{HealthFrac: 0.50, Rifts: 3},
				{HealthFrac: 0.25, Rifts: 4},
			},
			ContinuousIntervalMs: 20000,
			MaxActiveMinions:     6,

			GravityWellWarningMs: 1000,
			GravityWellActiveMs:  4000,
			GravityWellRadius:    400,
			GravityWellPullStrength: 60,
			GravityWellDamageEdge:   5,
			GravityWellDamageCenter: 25,
			GravityWellCooldownMs:   20000,

			ConsumeRange:           600,
			ConsumeHullWeight:      0.7,
			ConsumeProximityWeight: 0.3,
			ConsumeTendrilSpeed:    300,
			ConsumeDragMs:          1500,
			ConsumeHealMultiplier:  0.5,
			ConsumeCooldownMs:      25000,

			CombatApproachFrac:   0.7,
			CombatFireCooldownMs: 1000,
		},
		Rage: RageConfig{
			SpeedMult:      1.2,
			DamageMult:     1.2,
			FireCooldownMs: 800,
		},
	}
}

// Load reads configuration from path (YAML) if non-empty, overlaying
// ENV-provided overrides (prefix FACTIONAI_, "." replaced with "_"), and
// falling back entirely to Default() when path is empty. Unlike the
// teacher's ParseConfig, a missing/invalid file never panics: the engine is
// expected to run headless and a bad config file must not crash the host
// process, only report a wrapped error to the caller.
func Load(path string) (*Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetEnvPrefix("FACTIONAI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: reading %q: %w", path, err)
		}
		if err := v.Unmarshal(cfg); err != nil {
			return nil, fmt.Errorf("config: decoding %q: %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: invalid: %w", err)
	}
	return cfg, nil
}

// Validate checks the invariants a malformed config file could otherwise
// violate silently (e.g. phase thresholds out of order would make the
// Queen's phase engine non-monotonic).
func (c *Config) Validate() error {
	if !(c.Queen.PhaseHuntMinFrac > c.Queen.PhaseSiegeMinFrac &&
		c.Queen.PhaseSiegeMinFrac > c.Queen.PhaseSwarmMinFrac) {
		return fmt.Errorf("queen phase thresholds must be strictly decreasing (hunt > siege > swarm), got %v > %v > %v",
			c.Queen.PhaseHuntMinFrac, c.Queen.PhaseSiegeMinFrac, c.Queen.PhaseSwarmMinFrac)
	}
	if c.Dispatch.AllyRadius <= 0 {
		return fmt.Errorf("dispatch.ally_radius must be positive, got %v", c.Dispatch.AllyRadius)
	}
	if c.Mining.NearestCandidateCount <= 0 {
		return fmt.Errorf("mining.nearest_candidate_count must be positive, got %d", c.Mining.NearestCandidateCount)
	}
	for faction, frac := range c.Dispatch.RetreatThresholds {
		if frac < 0 || frac > 1 {
			return fmt.Errorf("dispatch.retreat_thresholds[%s] must be in [0,1], got %v", faction, frac)
		}
	}
	if c.Swarm.AssimilateTriggerRadius <= 0 {
		return fmt.Errorf("swarm.assimilate_trigger_radius must be positive, got %v", c.Swarm.AssimilateTriggerRadius)
	}
	if c.Swarm.AssimilateTriggerIntervalMs <= 0 {
		return fmt.Errorf("swarm.assimilate_trigger_interval_ms must be positive, got %d", c.Swarm.AssimilateTriggerIntervalMs)
	}
	return nil
}
