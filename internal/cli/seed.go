package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"gorm.io/datatypes"

	"github.com/netplus-prep/assessment-service/internal/config"
	"github.com/netplus-prep/assessment-service/internal/models"
	"github.com/netplus-prep/assessment-service/internal/repositories/postgres"
	"github.com/netplus-prep/assessment-service/internal/services"
	"github.com/netplus-prep/assessment-service/internal/utils"
	"github.com/netplus-prep/assessment-service/pkg"
)

// NewSeedCmd creates the command that loads a small demo question bank and
// one integrated scenario, for local development.
func NewSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed the database with demo questions and a scenario",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if cfg.DatabaseURL == "" {
				return errors.New("DATABASE_URL is required")
			}

			db, err := pkg.InitDatabase(cfg)
			if err != nil {
				return err
			}
			if err := pkg.MigrateDatabase(db); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			repo := postgres.NewRepository(db)
			logger := newLogger(cfg.Environment)
			questions := services.NewQuestionService(repo, logger, utils.NewValidator())

			ctx := context.Background()
			if err := questions.CreateQuestionBatch(ctx, seedQuestions()); err != nil {
				return fmt.Errorf("seeding questions failed: %w", err)
			}
			if err := repo.Scenario().Create(ctx, seedScenario()); err != nil {
				return fmt.Errorf("seeding scenario failed: %w", err)
			}

			fmt.Println("seed data loaded")
			return nil
		},
	}
}

func seedQuestions() []*models.Question {
	return []*models.Question{
		{
			Type:       models.SingleChoice,
			Domain:     models.DomainConcepts,
			Difficulty: models.DifficultyEasy,
			Question:   "Which OSI layer is responsible for logical addressing and routing?",
			Options: datatypes.JSONSlice[models.Option]{
				{ID: "a", Text: "Layer 2 - Data Link"},
				{ID: "b", Text: "Layer 3 - Network", IsCorrect: true},
				{ID: "c", Text: "Layer 4 - Transport"},
				{ID: "d", Text: "Layer 7 - Application"},
			},
			Explanation: "Layer 3 handles logical addressing (IP) and routing between networks.",
			ExamTip:     "Map each protocol you know to its OSI layer before exam day.",
			Tags:        datatypes.JSONSlice[string]{"osi-model", "routing"},
		},
		{
			Type:       models.MultiSelect,
			Domain:     models.DomainImplementation,
			Difficulty: models.DifficultyMedium,
			Question:   "Which of the following are private IPv4 address ranges? (Choose two.)",
			Options: datatypes.JSONSlice[models.Option]{
				{ID: "a", Text: "10.0.0.0/8", IsCorrect: true},
				{ID: "b", Text: "172.32.0.0/12"},
				{ID: "c", Text: "192.168.0.0/16", IsCorrect: true},
				{ID: "d", Text: "169.254.0.0/16"},
			},
			Explanation: "RFC 1918 defines 10.0.0.0/8, 172.16.0.0/12, and 192.168.0.0/16 as private ranges. 169.254.0.0/16 is link-local (APIPA).",
			Tags:        datatypes.JSONSlice[string]{"ipv4", "addressing"},
		},
		{
			Type:       models.TrueFalse,
			Domain:     models.DomainSecurity,
			Difficulty: models.DifficultyEasy,
			Question:   "WPA3 uses Simultaneous Authentication of Equals (SAE) instead of the WPA2 pre-shared key handshake.",
			Options: datatypes.JSONSlice[models.Option]{
				{ID: "true", Text: "True", IsCorrect: true},
				{ID: "false", Text: "False"},
			},
			Explanation: "WPA3-Personal replaces the PSK four-way handshake with SAE, which resists offline dictionary attacks.",
			Tags:        datatypes.JSONSlice[string]{"wireless", "wpa3"},
		},
		{
			Type:       models.SingleChoice,
			Domain:     models.DomainTroubleshooting,
			Difficulty: models.DifficultyHard,
			Question:   "Users on one VLAN can ping their gateway but cannot reach hosts on another VLAN. Inter-VLAN routing is configured on a router-on-a-stick. What is the MOST likely cause?",
			Options: datatypes.JSONSlice[models.Option]{
				{ID: "a", Text: "The trunk port is missing the VLAN from its allowed list", IsCorrect: true},
				{ID: "b", Text: "The DHCP scope is exhausted"},
				{ID: "c", Text: "Spanning tree has blocked the access ports"},
				{ID: "d", Text: "The DNS server is unreachable"},
			},
			Explanation: "If the subinterface's VLAN is pruned from the trunk, traffic never reaches the router even though the local gateway responds.",
			Tags:        datatypes.JSONSlice[string]{"vlan", "trunking"},
		},
		{
			Type:       models.SingleChoice,
			Domain:     models.DomainOperations,
			Difficulty: models.DifficultyMedium,
			Question:   "Which document defines the expected uptime and response commitments between a provider and a customer?",
			Options: datatypes.JSONSlice[models.Option]{
				{ID: "a", Text: "MOU"},
				{ID: "b", Text: "SLA", IsCorrect: true},
				{ID: "c", Text: "NDA"},
				{ID: "d", Text: "AUP"},
			},
			Explanation: "A service-level agreement (SLA) states measurable service commitments such as uptime and response time.",
			Tags:        datatypes.JSONSlice[string]{"documentation"},
		},
	}
}

func seedScenario() *models.IntegratedScenario {
	phases := []models.ScenarioPhase{
		{
			ID:          "phase-1",
			Title:       "Network Design",
			Description: "Design the addressing and VLAN scheme for the new branch office.",
			AssessmentPoints: []models.AssessmentPoint{
				{
					LOID:        "lo-2.1",
					LOCode:      "2.1",
					Description: "Propose a subnetting plan for three departments",
					MaxScore:    10,
					Criteria: []string{
						"separate subnet per department",
						"room for growth in each subnet",
						"VLAN assigned per subnet",
					},
				},
			},
			Hints:           []string{"Think about broadcast domain size."},
			RequiredForNext: true,
		},
		{
			ID:          "phase-2",
			Title:       "Security Hardening",
			Description: "Secure the branch network against common threats.",
			AssessmentPoints: []models.AssessmentPoint{
				{
					LOID:        "lo-4.3",
					LOCode:      "4.3",
					Description: "Recommend controls for the wireless network",
					MaxScore:    10,
					Criteria: []string{
						"WPA3 enterprise authentication",
						"separate guest network",
						"disable unused ports",
					},
				},
			},
		},
	}

	scenario := &models.IntegratedScenario{
		ID:                 "scenario-branch-office",
		Title:              "Branch Office Rollout",
		Description:        "Plan and secure the network for a new three-department branch office.",
		Difficulty:         models.ScenarioIntermediate,
		EstimatedTime:      45,
		LearningObjectives: datatypes.JSONSlice[string]{"2.1", "4.3"},
		Phases:             phases,
		Context: datatypes.NewJSONType(models.ScenarioContext{
			Company:      "Meridian Logistics",
			Locations:    1,
			Users:        120,
			Requirements: []string{"segmented departments", "secure wireless for staff and guests"},
			Constraints:  []string{"single uplink to headquarters", "existing cabling must be reused"},
		}),
	}
	for _, p := range phases {
		scenario.TotalPoints += p.MaxScore()
	}
	return scenario
}
