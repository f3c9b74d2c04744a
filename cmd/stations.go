package cmd

import (
	"context"

	"evcharge-client/internal/apperror"
	"evcharge-client/internal/data/entity"
	"evcharge-client/internal/dto/request"
	"evcharge-client/internal/wire"
	"evcharge-client/pkg/utils"

	"github.com/spf13/cobra"
)

func newStationsCommand(app *wire.App) *cobra.Command {
	var (
		near    string
		radius  float64
		offline bool
	)

	stations := &cobra.Command{
		Use:   "stations",
		Short: "List charging stations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if offline {
				list, err := app.Service.Station.CachedStations(cmd.Context())
				if err != nil {
					return err
				}
				printStations(cmd.OutOrStdout(), list)
				return nil
			}

			var req *request.NearbyStationsRequest
			if near != "" {
				lat, lon, err := utils.ParseCoordinates(near)
				if err != nil {
					return apperror.NewValidationError("Near", err.Error())
				}
				req = &request.NearbyStationsRequest{Latitude: lat, Longitude: lon, RadiusKm: radius}
			}

			list, err := run(cmd, func(ctx context.Context) ([]*entity.ChargingStation, error) {
				if req != nil {
					return app.Service.Station.NearbyStations(ctx, req)
				}
				return app.Service.Station.ListStations(ctx)
			})
			if err != nil {
				return err
			}
			printStations(cmd.OutOrStdout(), list)
			return nil
		},
	}

	stations.Flags().StringVar(&near, "near", "", "only stations near lat,lon")
	stations.Flags().Float64Var(&radius, "radius", 10, "search radius in km, used with --near")
	stations.Flags().BoolVar(&offline, "offline", false, "show the last fetched stations without calling the backend")
	return stations
}
