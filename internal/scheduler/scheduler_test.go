package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/prometheus/client_golang/prometheus"
	appstatedomain "github.com/reguahq/regua/internal/appstate/domain"
	appstaterepository "github.com/reguahq/regua/internal/appstate/repository"
	appstateservice "github.com/reguahq/regua/internal/appstate/service"
	chargedomain "github.com/reguahq/regua/internal/charge/domain"
	chargerepository "github.com/reguahq/regua/internal/charge/repository"
	"github.com/reguahq/regua/internal/clock"
	customerdomain "github.com/reguahq/regua/internal/customer/domain"
	dunningdomain "github.com/reguahq/regua/internal/dunning/domain"
	dunningrepository "github.com/reguahq/regua/internal/dunning/repository"
	notificationdomain "github.com/reguahq/regua/internal/notification/domain"
	notificationrepository "github.com/reguahq/regua/internal/notification/repository"
	obsmetrics "github.com/reguahq/regua/internal/observability/metrics"
	organizationdomain "github.com/reguahq/regua/internal/organization/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func swapPrometheusRegistry(reg *prometheus.Registry) func() {
	prevReg := prometheus.DefaultRegisterer
	prevGath := prometheus.DefaultGatherer
	prometheus.DefaultRegisterer = reg
	prometheus.DefaultGatherer = reg
	return func() {
		prometheus.DefaultRegisterer = prevReg
		prometheus.DefaultGatherer = prevGath
	}
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&organizationdomain.Organization{},
		&appstatedomain.AppState{},
		&customerdomain.Customer{},
		&chargedomain.Charge{},
		&dunningdomain.DunningRule{},
		&dunningdomain.DunningStep{},
		&notificationdomain.NotificationLog{},
	))
	return db
}

type testEnv struct {
	db    *gorm.DB
	node  *snowflake.Node
	clock *clock.FakeClock
	sched *Scheduler
}

func newTestEnv(t *testing.T, start time.Time) *testEnv {
	t.Helper()

	restore := swapPrometheusRegistry(prometheus.NewRegistry())
	t.Cleanup(restore)
	obsmetrics.ResetDunningMetricsForTest()
	t.Cleanup(obsmetrics.ResetDunningMetricsForTest)

	db := newTestDB(t)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	fakeClock := clock.NewFakeClock(start)

	appStateSvc := appstateservice.New(appstateservice.Params{
		DB:    db,
		Log:   zap.NewNop(),
		Clock: fakeClock,
		Repo:  appstaterepository.Provide(),
	})

	sched, err := New(Params{
		DB:               db,
		Log:              zap.NewNop(),
		GenID:            node,
		Clock:            fakeClock,
		AppStateSvc:      appStateSvc,
		ChargeRepo:       chargerepository.Provide(),
		DunningRepo:      dunningrepository.Provide(),
		NotificationRepo: notificationrepository.Provide(),
		Config: Config{
			RunInterval: time.Hour,
			JobTimeout:  time.Minute,
			BatchSize:   50,
		},
	})
	require.NoError(t, err)

	return &testEnv{db: db, node: node, clock: fakeClock, sched: sched}
}

func (e *testEnv) seedCustomer(t *testing.T, orgID snowflake.ID, name string) *customerdomain.Customer {
	t.Helper()
	customer := &customerdomain.Customer{
		ID:        e.node.Generate(),
		OrgID:     orgID,
		Name:      name,
		Email:     "billing@example.com",
		CreatedAt: e.clock.Now(),
		UpdatedAt: e.clock.Now(),
	}
	require.NoError(t, e.db.Create(customer).Error)
	return customer
}

func (e *testEnv) seedCharge(t *testing.T, orgID, customerID snowflake.ID, due time.Time) *chargedomain.Charge {
	t.Helper()
	charge := &chargedomain.Charge{
		ID:             e.node.Generate(),
		OrgID:          orgID,
		CustomerID:     customerID,
		Description:    "Mensalidade Janeiro",
		AmountCents:    150075,
		DueDate:        due,
		Status:         chargedomain.ChargeStatusPending,
		PaymentLinkURL: "https://pay.example.com/abc",
		CreatedAt:      e.clock.Now(),
		UpdatedAt:      e.clock.Now(),
	}
	require.NoError(t, e.db.Create(charge).Error)
	return charge
}

func (e *testEnv) seedStep(t *testing.T, orgID snowflake.ID, trigger dunningdomain.TriggerKind, offset int, channel dunningdomain.Channel, enabled bool) *dunningdomain.DunningStep {
	t.Helper()

	var rule dunningdomain.DunningRule
	err := e.db.Where("org_id = ?", orgID).First(&rule).Error
	if err != nil {
		require.ErrorIs(t, err, gorm.ErrRecordNotFound)
		rule = dunningdomain.DunningRule{
			ID:        e.node.Generate(),
			OrgID:     orgID,
			Name:      "Régua Padrão",
			Active:    true,
			Timezone:  "UTC",
			CreatedAt: e.clock.Now(),
			UpdatedAt: e.clock.Now(),
		}
		require.NoError(t, e.db.Create(&rule).Error)
	}

	step := &dunningdomain.DunningStep{
		ID:         e.node.Generate(),
		OrgID:      orgID,
		RuleID:     rule.ID,
		Trigger:    trigger,
		OffsetDays: offset,
		Channel:    channel,
		Template:   "{{nome}}: {{descricao}} ({{valor}}) venceu em {{vencimento}}. Link: {{link_boleto}}",
		Enabled:    enabled,
		CreatedAt:  e.clock.Now(),
		UpdatedAt:  e.clock.Now(),
	}
	require.NoError(t, e.db.Create(step).Error)
	return step
}

func (e *testEnv) notifications(t *testing.T, orgID snowflake.ID) []notificationdomain.NotificationLog {
	t.Helper()
	var entries []notificationdomain.NotificationLog
	require.NoError(t, e.db.Where("org_id = ?", orgID).Order("id").Find(&entries).Error)
	return entries
}

func (e *testEnv) chargeStatus(t *testing.T, id snowflake.ID) chargedomain.ChargeStatus {
	t.Helper()
	var charge chargedomain.Charge
	require.NoError(t, e.db.First(&charge, "id = ?", id).Error)
	return charge.Status
}

func TestRunOnce_FirstOverdueReminder(t *testing.T) {
	orgID := snowflake.ID(1001)
	env := newTestEnv(t, time.Date(2026, time.January, 13, 9, 0, 0, 0, time.UTC))

	customer := env.seedCustomer(t, orgID, "Maria Silva")
	charge := env.seedCharge(t, orgID, customer.ID, time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC))
	step := env.seedStep(t, orgID, dunningdomain.TriggerAfterDue, 3, dunningdomain.ChannelSMS, true)

	summary, err := env.sched.RunOnce(context.Background(), orgID)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.ChargesProcessed)
	assert.Equal(t, 1, summary.NotificationsCreated)
	assert.Equal(t, 0, summary.Errors)
	assert.Equal(t, chargedomain.ChargeStatusOverdue, env.chargeStatus(t, charge.ID))

	entries := env.notifications(t, orgID)
	require.Len(t, entries, 1)
	entry := entries[0]
	assert.Equal(t, charge.ID, entry.ChargeID)
	assert.Equal(t, step.ID, entry.StepID)
	assert.Equal(t, dunningdomain.ChannelSMS, entry.Channel)
	assert.Equal(t, notificationdomain.NotificationStatusSent, entry.Status)
	assert.Equal(t,
		"Maria Silva: Mensalidade Janeiro (R$ 1.500,75) venceu em 10/01/2026. Link: https://pay.example.com/abc",
		entry.RenderedMessage,
	)
	assert.Equal(t, "AFTER_DUE", entry.Metadata["trigger"])
}

func TestRunOnce_Idempotent(t *testing.T) {
	orgID := snowflake.ID(1002)
	env := newTestEnv(t, time.Date(2026, time.January, 13, 9, 0, 0, 0, time.UTC))

	customer := env.seedCustomer(t, orgID, "Maria Silva")
	env.seedCharge(t, orgID, customer.ID, time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC))
	env.seedStep(t, orgID, dunningdomain.TriggerAfterDue, 3, dunningdomain.ChannelEmail, true)

	first, err := env.sched.RunOnce(context.Background(), orgID)
	require.NoError(t, err)
	assert.Equal(t, 1, first.NotificationsCreated)

	second, err := env.sched.RunOnce(context.Background(), orgID)
	require.NoError(t, err)
	assert.Equal(t, 0, second.NotificationsCreated)

	assert.Len(t, env.notifications(t, orgID), 1)
}

func TestRunOnce_BeforeDueNotYet(t *testing.T) {
	orgID := snowflake.ID(1003)
	env := newTestEnv(t, time.Date(2026, time.January, 4, 9, 0, 0, 0, time.UTC))

	customer := env.seedCustomer(t, orgID, "Maria Silva")
	charge := env.seedCharge(t, orgID, customer.ID, time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC))
	env.seedStep(t, orgID, dunningdomain.TriggerBeforeDue, 5, dunningdomain.ChannelEmail, true)

	summary, err := env.sched.RunOnce(context.Background(), orgID)
	require.NoError(t, err)

	assert.Equal(t, 0, summary.NotificationsCreated)
	assert.Equal(t, chargedomain.ChargeStatusPending, env.chargeStatus(t, charge.ID))
	assert.Empty(t, env.notifications(t, orgID))

	// The next day is the exact firing day.
	env.clock.Advance(24 * time.Hour)
	summary, err = env.sched.RunOnce(context.Background(), orgID)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.NotificationsCreated)
	assert.Equal(t, chargedomain.ChargeStatusPending, env.chargeStatus(t, charge.ID))
}

func TestRunOnce_MissedDayNeverCaughtUp(t *testing.T) {
	orgID := snowflake.ID(1004)
	env := newTestEnv(t, time.Date(2026, time.January, 14, 9, 0, 0, 0, time.UTC))

	customer := env.seedCustomer(t, orgID, "Maria Silva")
	charge := env.seedCharge(t, orgID, customer.ID, time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC))
	env.seedStep(t, orgID, dunningdomain.TriggerAfterDue, 3, dunningdomain.ChannelWhatsApp, true)

	// D+3 was yesterday; the step's day has passed and must not fire.
	summary, err := env.sched.RunOnce(context.Background(), orgID)
	require.NoError(t, err)

	assert.Equal(t, 0, summary.NotificationsCreated)
	assert.Equal(t, chargedomain.ChargeStatusOverdue, env.chargeStatus(t, charge.ID))
	assert.Empty(t, env.notifications(t, orgID))
}

func TestRunOnce_DisabledStepIgnored(t *testing.T) {
	orgID := snowflake.ID(1005)
	env := newTestEnv(t, time.Date(2026, time.January, 13, 9, 0, 0, 0, time.UTC))

	customer := env.seedCustomer(t, orgID, "Maria Silva")
	env.seedCharge(t, orgID, customer.ID, time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC))
	env.seedStep(t, orgID, dunningdomain.TriggerAfterDue, 3, dunningdomain.ChannelSMS, false)

	summary, err := env.sched.RunOnce(context.Background(), orgID)
	require.NoError(t, err)

	assert.Equal(t, 0, summary.NotificationsCreated)
	assert.Empty(t, env.notifications(t, orgID))
}

func TestRunOnce_TenantIsolation(t *testing.T) {
	orgA := snowflake.ID(1006)
	orgB := snowflake.ID(1007)
	env := newTestEnv(t, time.Date(2026, time.January, 13, 9, 0, 0, 0, time.UTC))

	due := time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC)
	customerA := env.seedCustomer(t, orgA, "Maria Silva")
	chargeA := env.seedCharge(t, orgA, customerA.ID, due)
	env.seedStep(t, orgA, dunningdomain.TriggerAfterDue, 3, dunningdomain.ChannelSMS, true)

	customerB := env.seedCustomer(t, orgB, "João Souza")
	chargeB := env.seedCharge(t, orgB, customerB.ID, due)
	env.seedStep(t, orgB, dunningdomain.TriggerAfterDue, 3, dunningdomain.ChannelSMS, true)

	summary, err := env.sched.RunOnce(context.Background(), orgA)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.NotificationsCreated)
	assert.Len(t, env.notifications(t, orgA), 1)
	assert.Empty(t, env.notifications(t, orgB))
	assert.Equal(t, chargedomain.ChargeStatusOverdue, env.chargeStatus(t, chargeA.ID))
	assert.Equal(t, chargedomain.ChargeStatusPending, env.chargeStatus(t, chargeB.ID))
}

func TestRunOnce_PerChargeErrorIsolation(t *testing.T) {
	orgID := snowflake.ID(1008)
	env := newTestEnv(t, time.Date(2026, time.January, 13, 9, 0, 0, 0, time.UTC))

	due := time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC)

	// First charge references a customer that does not exist, so
	// rendering cannot resolve a name and the charge fails.
	env.seedCharge(t, orgID, env.node.Generate(), due)

	customer := env.seedCustomer(t, orgID, "Maria Silva")
	env.seedCharge(t, orgID, customer.ID, due)

	env.seedStep(t, orgID, dunningdomain.TriggerAfterDue, 3, dunningdomain.ChannelSMS, true)

	summary, err := env.sched.RunOnce(context.Background(), orgID)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.ChargesProcessed)
	assert.Equal(t, 1, summary.NotificationsCreated)
	assert.Equal(t, 1, summary.Errors)
	assert.Len(t, env.notifications(t, orgID), 1)
}

func TestRunOnce_UsesSimulatedClock(t *testing.T) {
	orgID := snowflake.ID(1009)
	// Wall clock far before the due date; only the simulated clock is
	// past it.
	env := newTestEnv(t, time.Date(2025, time.December, 1, 9, 0, 0, 0, time.UTC))

	simulated := time.Date(2026, time.January, 13, 0, 0, 0, 0, time.UTC)
	require.NoError(t, env.db.Create(&appstatedomain.AppState{
		OrgID:        orgID,
		SimulatedNow: &simulated,
		UpdatedAt:    env.clock.Now(),
	}).Error)

	customer := env.seedCustomer(t, orgID, "Maria Silva")
	charge := env.seedCharge(t, orgID, customer.ID, time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC))
	env.seedStep(t, orgID, dunningdomain.TriggerAfterDue, 3, dunningdomain.ChannelEmail, true)

	summary, err := env.sched.RunOnce(context.Background(), orgID)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.NotificationsCreated)
	assert.Equal(t, chargedomain.ChargeStatusOverdue, env.chargeStatus(t, charge.ID))
}

func TestRunAll_VisitsEveryActiveOrg(t *testing.T) {
	orgA := snowflake.ID(1010)
	orgB := snowflake.ID(1011)
	env := newTestEnv(t, time.Date(2026, time.January, 13, 9, 0, 0, 0, time.UTC))

	due := time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC)
	for _, orgID := range []snowflake.ID{orgA, orgB} {
		customer := env.seedCustomer(t, orgID, "Maria Silva")
		env.seedCharge(t, orgID, customer.ID, due)
		env.seedStep(t, orgID, dunningdomain.TriggerAfterDue, 3, dunningdomain.ChannelSMS, true)
	}

	require.NoError(t, env.sched.RunAll(context.Background()))

	assert.Len(t, env.notifications(t, orgA), 1)
	assert.Len(t, env.notifications(t, orgB), 1)
}

func TestRunOnce_RejectsZeroOrg(t *testing.T) {
	env := newTestEnv(t, time.Date(2026, time.January, 13, 9, 0, 0, 0, time.UTC))

	_, err := env.sched.RunOnce(context.Background(), 0)
	assert.ErrorIs(t, err, appstatedomain.ErrInvalidOrganization)
}

func TestRunOnce_FullLadderOverThirtyDays(t *testing.T) {
	orgID := snowflake.ID(1012)
	start := time.Date(2026, time.January, 1, 9, 0, 0, 0, time.UTC)
	env := newTestEnv(t, start)

	customer := env.seedCustomer(t, orgID, "Maria Silva")
	charge := env.seedCharge(t, orgID, customer.ID, time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC))

	// The default ladder: D-5 email, D-1 whatsapp, D+3 sms, D+7 whatsapp.
	env.seedStep(t, orgID, dunningdomain.TriggerBeforeDue, 5, dunningdomain.ChannelEmail, true)
	env.seedStep(t, orgID, dunningdomain.TriggerBeforeDue, 1, dunningdomain.ChannelWhatsApp, true)
	env.seedStep(t, orgID, dunningdomain.TriggerAfterDue, 3, dunningdomain.ChannelSMS, true)
	env.seedStep(t, orgID, dunningdomain.TriggerAfterDue, 7, dunningdomain.ChannelWhatsApp, true)

	ctx := context.Background()
	for day := 0; day < 30; day++ {
		_, err := env.sched.RunOnce(ctx, orgID)
		require.NoError(t, err)
		env.clock.Advance(24 * time.Hour)
	}

	entries := env.notifications(t, orgID)
	assert.Len(t, entries, 4)
	assert.Equal(t, chargedomain.ChargeStatusOverdue, env.chargeStatus(t, charge.ID))

	channels := map[dunningdomain.Channel]int{}
	for _, entry := range entries {
		channels[entry.Channel]++
	}
	assert.Equal(t, 1, channels[dunningdomain.ChannelEmail])
	assert.Equal(t, 1, channels[dunningdomain.ChannelSMS])
	assert.Equal(t, 2, channels[dunningdomain.ChannelWhatsApp])
}
