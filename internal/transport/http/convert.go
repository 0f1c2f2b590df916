package http

import (
	"nucleval/internal/alignment"
	"nucleval/internal/dataset"
	"nucleval/internal/evaluation"
	"nucleval/internal/quantity"
	api "nucleval/pkg/contracts/api/v1"
)

func toQuantity(q quantity.Quantity) api.Quantity {
	out := api.Quantity{
		Kind:               q.Kind().String(),
		Inclusive:          q.Inclusive(),
		DisplayValue:       q.DisplayValue(),
		DisplayUncertainty: q.DisplayUncertainty(),
		SignificantDigits:  q.SignificantDigits(),
	}
	if v, ok := q.Value(); ok {
		out.Value = &v
	}
	if u, ok := q.Upper(); ok {
		out.UpperUncertainty = &u
	}
	if l, ok := q.Lower(); ok {
		out.LowerUncertainty = &l
	}
	return out
}

func toQuantityResponse(q quantity.Quantity, r quantity.Rendered) api.QuantityResponse {
	return api.QuantityResponse{
		Quantity: toQuantity(q),
		Rendered: api.Rendered{Value: r.Value, Uncertainty: r.Uncertainty},
	}
}

func toAlignResponse(res *alignment.Result) api.AlignResponse {
	out := api.AlignResponse{
		Groups:            make([]api.AlignedGroup, len(res.Groups)),
		Iterations:        res.Iterations,
		Terminated:        res.Terminated,
		TerminationReason: res.TerminationReason,
		Warnings:          res.Warnings,
	}
	for i, g := range res.Groups {
		out.Groups[i] = api.AlignedGroup{
			Indices:   g.Indices,
			Reference: g.Reference,
			Spread:    g.Spread,
			Residual:  g.Residual,
		}
	}
	return out
}

func toCollection(req api.AverageRequest) dataset.Collection {
	points := make([]dataset.DataPoint, len(req.Points))
	for i, p := range req.Points {
		points[i] = dataset.FromRecord(p.Dataset, dataset.Record{
			ID:          p.ID,
			Value:       p.Value,
			Uncertainty: p.Uncertainty,
			Provenance:  p.Provenance,
		})
	}
	return dataset.NewCollection(req.Name, points...)
}

func toEvaluationRequest(req api.EvaluateRequest) evaluation.Request {
	out := evaluation.Request{
		Datasets: make([]evaluation.Dataset, len(req.Datasets)),
		Overrides: evaluation.Overrides{
			ErrorLimit: req.ErrorLimit,
			Method:     req.Method,
			Tolerance:  req.Tolerance,
		},
	}
	for i, ds := range req.Datasets {
		records := make([]dataset.Record, len(ds.Records))
		for j, r := range ds.Records {
			records[j] = dataset.Record{
				ID:          r.ID,
				Key:         r.Key,
				Value:       r.Value,
				Uncertainty: r.Uncertainty,
				Provenance:  r.Provenance,
			}
		}
		out.Datasets[i] = evaluation.Dataset{Name: ds.Name, Records: records}
	}
	return out
}
