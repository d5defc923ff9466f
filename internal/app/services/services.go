package services

// Services defined in this package:
// - SemesterService: Manages academic term records
// - RoomService: Exposes the room inventory
// - DemandService: Ingests and manages course demands
// - ScoringService: Ranks candidate rooms for a demand
// - AllocationService: Runs the three-phase allocation and manual overrides
// - ReservationService: Creates and cancels ad-hoc room reservations
