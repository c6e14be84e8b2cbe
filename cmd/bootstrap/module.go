package bootstrap

import (
	"tourbook/cmd/bootstrap/components"

	"go.uber.org/fx"
)

var Module = fx.Options(
	ConfigModule,
	LoggerModule,
	DBModule,
	JWTModule,
	components.PersistenceModule,
	GatewayModule,
	components.UseCaseModule,
	components.HandlerModule,
	MessagingModule,
	SchedulerModule,
)
