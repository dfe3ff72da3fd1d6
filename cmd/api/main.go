package main

import (
	"log"

	"yieldpilot/cmd"
)

func main() {
	deps, err := cmd.InitializeDependencies()
	if err != nil {
		log.Fatal(err)
	}
	defer cmd.CloseDependencies(deps)

	err = deps.Scheduler.Start(
		deps.Config.Schedule.RebaseCron,
		deps.Config.Schedule.HarvestCron,
		deps.Config.Schedule.FundingCron,
	)
	if err != nil {
		log.Fatal(err)
	}

	err = deps.Handler.StartApi(deps.Config.Server.Port)
	if err != nil {
		log.Fatal(err)
	}
}
