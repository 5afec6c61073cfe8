package npc

// Blueprint defines an NPC TYPE's base combat attributes, the same way the
// teacher's ships.Ship defines a ship type's blueprint (ships/ship.go).
// Runtime state (position, hull, cooldowns, role slots) lives on NPC;
// Blueprint only supplies the starting values New() stamps onto a fresh
// instance.
type Blueprint struct {
	HullMax      float64
	ShieldMax    float64
	AggroRange   float64
	WeaponRange  float64
	WeaponDamage float64
	WeaponType   string
	WeaponTier   int
	Speed        float64
	InitialState string
	LinkedHealth bool
}

// Blueprints is the static catalog of per-type combat numbers, keyed by
// Type, mirroring ships.ShipBlueprints. Spawning (outside this core, per
// §3.1 "Lifecycle") is expected to look up a Blueprint here before calling
// New.
var Blueprints = map[Type]Blueprint{
	PirateScout: {
		HullMax: 80, ShieldMax: 20, AggroRange: 1200, WeaponRange: 300,
		WeaponDamage: 5, WeaponType: "light_blaster", WeaponTier: 1, Speed: 140,
		InitialState: "patrol",
	},
	PirateFighter: {
		HullMax: 220, ShieldMax: 60, AggroRange: 900, WeaponRange: 350,
		WeaponDamage: 18, WeaponType: "cannon", WeaponTier: 1, Speed: 110,
		InitialState: "patrol",
	},
	PirateCaptain: {
		HullMax: 500, ShieldMax: 150, AggroRange: 900, WeaponRange: 400,
		WeaponDamage: 28, WeaponType: "cannon", WeaponTier: 2, Speed: 90,
		InitialState: "idle",
	},
	PirateDreadnought: {
		HullMax: 10000, ShieldMax: 2000, AggroRange: 900, WeaponRange: 550,
		WeaponDamage: 100, WeaponType: "heavy_cannon", WeaponTier: 3, Speed: 60,
		InitialState: "spawning",
	},
	ScavengerRaider: {
		HullMax: 260, ShieldMax: 100, AggroRange: 800, WeaponRange: 320,
		WeaponDamage: 16, WeaponType: "scrap_cannon", WeaponTier: 1, Speed: 120,
		InitialState: "patrol",
	},
	SwarmDrone: {
		HullMax: 40, ShieldMax: 0, AggroRange: 600, WeaponRange: 150,
		WeaponDamage: 4, WeaponType: "bio_sting", WeaponTier: 1, Speed: 130,
		InitialState: "patrol", LinkedHealth: true,
	},
	SwarmWorker: {
		HullMax: 70, ShieldMax: 0, AggroRange: 600, WeaponRange: 180,
		WeaponDamage: 6, WeaponType: "bio_sting", WeaponTier: 1, Speed: 110,
		InitialState: "patrol", LinkedHealth: true,
	},
	SwarmWarrior: {
		HullMax: 150, ShieldMax: 0, AggroRange: 700, WeaponRange: 220,
		WeaponDamage: 14, WeaponType: "bio_spike", WeaponTier: 2, Speed: 100,
		InitialState: "patrol", LinkedHealth: true,
	},
	SwarmQueen: {
		HullMax: 20000, ShieldMax: 0, AggroRange: 1200, WeaponRange: 300,
		WeaponDamage: 60, WeaponType: "bio_spike", WeaponTier: 3, Speed: 70,
		InitialState: "hunt",
	},
	VoidFighter: {
		HullMax: 300, ShieldMax: 200, AggroRange: 900, WeaponRange: 400,
		WeaponDamage: 22, WeaponType: "phase_beam", WeaponTier: 2, Speed: 100,
		InitialState: "patrol",
	},
	VoidLeviathan: {
		HullMax: 30000, ShieldMax: 5000, AggroRange: 1500, WeaponRange: 500,
		WeaponDamage: 80, WeaponType: "phase_beam", WeaponTier: 3, Speed: 50,
		InitialState: "combat",
	},
	VoidRift: {
		HullMax: 120, ShieldMax: 0, AggroRange: 700, WeaponRange: 250,
		WeaponDamage: 10, WeaponType: "phase_shard", WeaponTier: 1, Speed: 160,
		InitialState: "patrol",
	},
	RogueMiner: {
		HullMax: 180, ShieldMax: 60, AggroRange: 700, WeaponRange: 280,
		WeaponDamage: 12, WeaponType: "mining_laser", WeaponTier: 1, Speed: 90,
		InitialState: "idle",
	},
}
