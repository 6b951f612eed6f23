package main

import (
	"net/url"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

func init() {
	var page, limit int
	var search, status, invoice, date string

	listParams := func(extra map[string]string) url.Values {
		v := url.Values{}
		v.Set("page", strconv.Itoa(page))
		v.Set("limit", strconv.Itoa(limit))
		for k, val := range extra {
			if val != "" {
				v.Set(k, val)
			}
		}
		return v
	}

	roster := &cobra.Command{Use: "phlebotomists", Short: "Phlebotomist roster operations"}
	rosterList := &cobra.Command{
		Use:   "list",
		Short: "List phlebotomists",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newAPIClient(apiFlag)
			if err := c.login(emailFlag, passwordFlag); err != nil {
				return err
			}
			return c.get("/get-all-phlebotomist", listParams(map[string]string{"search": search}), os.Stdout)
		},
	}
	rosterList.Flags().IntVar(&page, "page", 0, "Zero-based page")
	rosterList.Flags().IntVar(&limit, "limit", 10, "Page size")
	rosterList.Flags().StringVarP(&search, "search", "s", "", "Name substring")
	roster.AddCommand(rosterList)
	rootCmd.AddCommand(roster)

	samples := &cobra.Command{Use: "samples", Short: "Due sample operations"}
	samplesList := &cobra.Command{
		Use:   "list",
		Short: "List due samples",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newAPIClient(apiFlag)
			if err := c.login(emailFlag, passwordFlag); err != nil {
				return err
			}
			return c.get("/get-all-sample", listParams(map[string]string{
				"search":  search,
				"status":  status,
				"invoice": invoice,
				"date":    date,
			}), os.Stdout)
		},
	}
	samplesList.Flags().IntVar(&page, "page", 0, "Zero-based page")
	samplesList.Flags().IntVar(&limit, "limit", 10, "Page size")
	samplesList.Flags().StringVarP(&search, "search", "s", "", "Invoice substring")
	samplesList.Flags().StringVar(&status, "status", "", "Exact status")
	samplesList.Flags().StringVar(&invoice, "invoice", "", "Exact invoice")
	samplesList.Flags().StringVar(&date, "date", "", "Calendar day YYYY-MM-DD")
	samples.AddCommand(samplesList)

	overview := &cobra.Command{
		Use:   "overview",
		Short: "Print every sample",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newAPIClient(apiFlag)
			if err := c.login(emailFlag, passwordFlag); err != nil {
				return err
			}
			return c.get("/overview", nil, os.Stdout)
		},
	}
	samples.AddCommand(overview)
	rootCmd.AddCommand(samples)
}
