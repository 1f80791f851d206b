package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/jessevdk/go-flags"
	"gopkg.in/yaml.v3"

	"github.com/relabs-tech/survey_navigator/internal/projection"
)

type Options struct {
	Zone   int    `short:"z" long:"zone" description:"Plane rectangular zone (1-19)" default:"9"`
	ToGeo  bool   `short:"g" long:"to-geo" description:"Convert plane X/Y to latitude/longitude"`
	List   bool   `short:"l" long:"list" description:"List the zones and exit"`
	Format string `short:"f" long:"format" description:"Output format" choice:"text" choice:"json" choice:"yaml" default:"text"`

	Args struct {
		First  string `positional-arg-name:"LAT|X"`
		Second string `positional-arg-name:"LON|Y"`
	} `positional-args:"yes"`
}

type result struct {
	Zone int     `json:"zone" yaml:"zone"`
	Lat  float64 `json:"lat" yaml:"lat"`
	Lon  float64 `json:"lon" yaml:"lon"`
	X    float64 `json:"x" yaml:"x"`
	Y    float64 `json:"y" yaml:"y"`
}

type zoneInfo struct {
	ID     int     `json:"id" yaml:"id"`
	Name   string  `json:"name" yaml:"name"`
	Region string  `json:"region" yaml:"region"`
	EPSG   int     `json:"epsg" yaml:"epsg"`
	Lat0   float64 `json:"lat0" yaml:"lat0"`
	Lon0   float64 `json:"lon0" yaml:"lon0"`
	Proj4  string  `json:"proj4" yaml:"proj4"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if err := run(opts, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(opts Options, out io.Writer) error {
	if opts.List {
		return listZones(opts.Format, out)
	}

	if opts.Args.First == "" || opts.Args.Second == "" {
		return fmt.Errorf("two coordinates are required")
	}
	a, err := strconv.ParseFloat(opts.Args.First, 64)
	if err != nil {
		return fmt.Errorf("invalid coordinate %q", opts.Args.First)
	}
	b, err := strconv.ParseFloat(opts.Args.Second, 64)
	if err != nil {
		return fmt.Errorf("invalid coordinate %q", opts.Args.Second)
	}

	res := result{Zone: opts.Zone}
	if opts.ToGeo {
		g, err := projection.ToGeo(projection.PlanePoint{Northing: a, Easting: b}, opts.Zone)
		if err != nil {
			return err
		}
		res.X, res.Y, res.Lat, res.Lon = a, b, g.Lat, g.Lon
	} else {
		p, err := projection.ToPlane(projection.GeoPoint{Lat: a, Lon: b}, opts.Zone)
		if err != nil {
			return err
		}
		res.Lat, res.Lon, res.X, res.Y = a, b, p.Northing, p.Easting
	}

	switch opts.Format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case "yaml":
		return yaml.NewEncoder(out).Encode(res)
	default:
		if opts.ToGeo {
			_, err = fmt.Fprintf(out, "%.8f %.8f\n", res.Lat, res.Lon)
		} else {
			_, err = fmt.Fprintf(out, "%.4f %.4f\n", res.X, res.Y)
		}
		return err
	}
}

func listZones(format string, out io.Writer) error {
	zones := projection.Default().Zones()
	infos := make([]zoneInfo, 0, len(zones))
	for _, z := range zones {
		infos = append(infos, zoneInfo{
			ID:     z.ID,
			Name:   z.Name,
			Region: z.Region,
			EPSG:   z.EPSG,
			Lat0:   z.Params.LatOrigin,
			Lon0:   z.Params.CentralMeridian,
			Proj4:  z.Params.Proj4(),
		})
	}

	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(infos)
	case "yaml":
		return yaml.NewEncoder(out).Encode(infos)
	default:
		for _, z := range infos {
			if _, err := fmt.Fprintf(out, "%2d  EPSG:%d  %s  %s\n", z.ID, z.EPSG, z.Name, z.Region); err != nil {
				return err
			}
		}
		return nil
	}
}
